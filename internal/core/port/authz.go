package port

import "github.com/shopmart/orderengine/internal/core/domain"

// Actions and resources known to the authorizer. Ownership scoping
// (a customer touching only their own orders) stays in the service, the
// authorizer answers the role question.
const (
	ResourceOrders    = "orders"
	ResourceCampaigns = "campaigns"
	ResourceReports   = "reports"
	ResourceProducts  = "products"

	ActionCreate = "create"
	ActionRead   = "read"
	ActionDecide = "decide"
	ActionDelete = "delete"
	ActionRun    = "run"
)

//go:generate mockgen -source=authz.go -destination=mock/authz.go -package=mock
type Authorizer interface {
	// Enforce returns domain.ErrForbidden when the principal's role may
	// not perform action on resource.
	Enforce(principal domain.Principal, resource, action string) error
}
