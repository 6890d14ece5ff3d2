package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
)

var orderColumns = []string{
	"id", "user_id", "status", "order_date", "total_amount",
	"discount_applied", "discount_types", "stock_released", "is_visible", "created_at",
}

// CreateOrder persists the order and reserves stock for every line item in
// a single transaction. The conditional decrement with the stock guard is
// the ledger's serialization point: concurrent buyers racing for the last
// unit get a deterministic winner, the loser's transaction rolls back whole
// and ErrInsufficientStock is returned with nothing decremented.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		statement := r.db.QueryBuilder.
			Insert("orders").
			Columns(
				"id", "user_id", "status", "order_date", "total_amount",
				"discount_applied", "discount_types", "stock_released", "is_visible",
			).
			Values(
				order.ID, order.UserID, order.Status, order.OrderDate, order.TotalAmount,
				order.DiscountApplied, order.Discounts.String(), order.StockReleased, order.IsVisible,
			)

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return err
		}

		for _, item := range order.Items {
			decrement := r.db.QueryBuilder.
				Update("products").
				Set("stock", sq.Expr("stock - ?", item.Quantity)).
				Where(sq.Eq{"id": item.ProductID, "is_active": true}).
				Where(sq.Expr("stock >= ?", item.Quantity))

			sql, args, err := decrement.ToSql()
			if err != nil {
				return err
			}
			ct, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return err
			}
			if ct.RowsAffected() == 0 {
				return domain.ErrInsufficientStock
			}

			itemInsert := r.db.QueryBuilder.
				Insert("order_items").
				Columns("order_id", "product_id", "product_name", "quantity", "unit_price").
				Values(order.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice)

			sql, args, err = itemInsert.ToSql()
			if err != nil {
				return err
			}
			if _, err = tx.Exec(ctx, sql, args...); err != nil {
				return err
			}

			reservation := r.db.QueryBuilder.
				Insert("stock_reservations").
				Columns("order_id", "product_id", "quantity", "released").
				Values(order.ID, item.ProductID, item.Quantity, false)

			sql, args, err = reservation.ToSql()
			if err != nil {
				return err
			}
			if _, err = tx.Exec(ctx, sql, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			r.metrics.ReservationConflicts.Inc()
			return nil, domain.ErrInsufficientStock
		}
		return nil, dbError(err)
	}

	r.metrics.OrdersCreated.Inc()
	return order, nil
}

func (r *Repository) ReadOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := r.readOrderRow(ctx, r.db, orderID, false)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, r.db, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrder loads the order under a row lock, applies fn and persists
// the result. When fn flips StockReleased, the order's unreleased
// reservations are credited back to the products in the same transaction,
// so the release happens exactly once no matter how often it is retried.
func (r *Repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, fn port.UpdateOrderFn) (*domain.Order, error) {
	var order *domain.Order
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		order, err = r.readOrderRow(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		if err := r.loadItems(ctx, tx, []*domain.Order{order}); err != nil {
			return err
		}

		wasReleased := order.StockReleased
		if err := fn(order); err != nil {
			return err
		}

		statement := r.db.QueryBuilder.
			Update("orders").
			Set("status", order.Status).
			Set("total_amount", order.TotalAmount).
			Set("discount_applied", order.DiscountApplied).
			Set("discount_types", order.Discounts.String()).
			Set("stock_released", order.StockReleased).
			Set("is_visible", order.IsVisible).
			Where(sq.Eq{"id": orderID})

		sql, args, err := statement.ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, sql, args...); err != nil {
			return dbError(err)
		}

		if !wasReleased && order.StockReleased {
			return r.releaseReservations(ctx, tx, orderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) releaseReservations(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`UPDATE products p
		    SET stock = p.stock + sr.quantity
		   FROM stock_reservations sr
		  WHERE sr.order_id = $1
		    AND NOT sr.released
		    AND p.id = sr.product_id`, orderID)
	if err != nil {
		return dbError(err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE stock_reservations
		    SET released = true
		  WHERE order_id = $1
		    AND NOT released`, orderID)
	if err != nil {
		return dbError(err)
	}

	r.metrics.ReservationsReleased.Inc()
	return nil
}

func (r *Repository) ListOrdersByUser(ctx context.Context, userID uint64) ([]*domain.Order, error) {
	return r.listOrders(ctx, sq.Eq{"user_id": userID, "is_visible": true})
}

func (r *Repository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return r.listOrders(ctx, sq.Eq{"is_visible": true})
}

func (r *Repository) ListOrdersForCampaign(ctx context.Context, start, end time.Time) ([]*domain.Order, error) {
	return r.listOrders(ctx, sq.And{
		sq.Eq{"status": domain.OrderStatusPending, "is_visible": true},
		sq.GtOrEq{"order_date": start},
		sq.LtOrEq{"order_date": end},
	})
}

func (r *Repository) listOrders(ctx context.Context, where sq.Sqlizer) ([]*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(where).
		OrderBy("created_at DESC")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, dbError(err)
		}
		list = append(list, order)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}

	if err := r.loadItems(ctx, r.db, list); err != nil {
		return nil, err
	}
	return list, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) readOrderRow(ctx context.Context, q queryer, orderID uuid.UUID, forUpdate bool) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": orderID})
	if forUpdate {
		statement = statement.Suffix("FOR UPDATE")
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order, err := scanOrder(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDataNotFound
		}
		return nil, dbError(err)
	}
	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	order := domain.Order{}
	var tags string
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.OrderDate,
		&order.TotalAmount,
		&order.DiscountApplied,
		&tags,
		&order.StockReleased,
		&order.IsVisible,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Discounts, err = domain.ParseDiscountSet(tags)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) loadItems(ctx context.Context, q queryer, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	statement := r.db.QueryBuilder.
		Select("order_id", "product_id", "product_name", "quantity", "unit_price").
		From("order_items").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return dbError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		item := domain.OrderItem{}
		err := rows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return dbError(err)
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return dbError(err)
	}
	return nil
}
