package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
	"go.uber.org/zap"
)

// randomSelectionProbability is the chance an eligible order is picked by
// the random campaign. Selection is an independent draw per order; the 50
// in RANDOM_50 is the discount percentage, not this probability.
const randomSelectionProbability = 0.5

// ApplyRandomDiscount runs the probabilistic campaign over visible PENDING
// orders dated inside [start, end]. Returns how many orders were updated.
func (s *Service) ApplyRandomDiscount(ctx context.Context, principal domain.Principal,
	start, end time.Time) (int, error) {
	return s.runCampaign(ctx, principal, start, end, domain.DiscountRandom50, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.rnd.Float64() < randomSelectionProbability
	})
}

// ApplyTimeDiscount deterministically discounts every visible PENDING
// order dated inside [start, end].
func (s *Service) ApplyTimeDiscount(ctx context.Context, principal domain.Principal,
	start, end time.Time) (int, error) {
	return s.runCampaign(ctx, principal, start, end, domain.DiscountTime10, func() bool { return true })
}

// runCampaign applies one campaign tag to the selected orders, one
// repository transaction per order. Re-running the same campaign over an
// overlapping window is a no-op for orders already carrying the tag, and a
// cancelled run leaves the orders committed so far updated and the rest
// untouched. Stock is never touched here, only the money fields.
func (s *Service) runCampaign(ctx context.Context, principal domain.Principal,
	start, end time.Time, tag domain.DiscountType, selected func() bool) (int, error) {
	if err := s.authz.Enforce(principal, port.ResourceCampaigns, port.ActionRun); err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, domain.ErrValidation
	}

	candidates, err := s.repo.ListOrdersForCampaign(ctx, start, end)
	if err != nil {
		s.logger.Error("List campaign candidates", zap.Error(err))
		return 0, err
	}

	updated := 0
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if candidate.Discounts.Has(tag) {
			continue
		}
		if !selected() {
			continue
		}

		frequent := false
		if user, err := s.repo.GetUser(ctx, candidate.UserID); err == nil {
			frequent = user.IsFrequentCustomer
		} else if !errors.Is(err, domain.ErrDataNotFound) {
			return updated, err
		}

		_, err := s.repo.UpdateOrder(ctx, candidate.ID, func(o *domain.Order) error {
			// Re-check under the transaction: the candidate list is a
			// snapshot and another run may have tagged the order since.
			if o.Status != domain.OrderStatusPending || !o.IsVisible || o.Discounts.Has(tag) {
				return domain.ErrAlreadyFinalized
			}
			o.Discounts = o.Discounts.With(tag)
			if frequent {
				o.Discounts = o.Discounts.With(domain.DiscountFrequent5)
			}
			return o.ApplyDiscounts()
		})
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyFinalized) || errors.Is(err, domain.ErrDataNotFound) {
				continue
			}
			s.logger.Error("Apply campaign discount", zap.Error(err),
				zap.String("order", candidate.ID.String()), zap.String("campaign", string(tag)))
			return updated, err
		}
		updated++
	}

	s.logger.Info("Campaign pass finished",
		zap.String("campaign", string(tag)),
		zap.Int("candidates", len(candidates)),
		zap.Int("updated", updated))
	return updated, nil
}
