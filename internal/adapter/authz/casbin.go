package authz

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
)

// The engine's whole permission surface is a fixed role-to-action table,
// so the model and policies live in code rather than external files.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

var policies = [][]string{
	{string(domain.RoleAdmin), port.ResourceOrders, port.ActionCreate},
	{string(domain.RoleAdmin), port.ResourceOrders, port.ActionRead},
	{string(domain.RoleAdmin), port.ResourceOrders, port.ActionDecide},
	{string(domain.RoleAdmin), port.ResourceOrders, port.ActionDelete},
	{string(domain.RoleAdmin), port.ResourceCampaigns, port.ActionRun},
	{string(domain.RoleAdmin), port.ResourceReports, port.ActionRead},
	{string(domain.RoleAdmin), port.ResourceProducts, port.ActionRead},

	{string(domain.RoleCustomer), port.ResourceOrders, port.ActionCreate},
	{string(domain.RoleCustomer), port.ResourceOrders, port.ActionRead},
	{string(domain.RoleCustomer), port.ResourceProducts, port.ActionRead},
	{string(domain.RoleCustomer), port.ResourceReports, port.ActionRead},
}

// Enforcer answers the single role-permission question every service
// operation asks. Ownership scoping stays in the service layer.
type Enforcer struct {
	enforcer *casbin.Enforcer
}

func New() (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	for _, p := range policies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return &Enforcer{enforcer: e}, nil
}

func (e *Enforcer) Enforce(principal domain.Principal, resource, action string) error {
	ok, err := e.enforcer.Enforce(string(principal.Role), resource, action)
	if err != nil {
		return domain.ErrInternal
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
