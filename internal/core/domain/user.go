package domain

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCustomer:
		return Role(s), nil
	}
	return "", ErrValidation
}

type User struct {
	ID       uint64
	Login    string
	Password string
	Role     Role
	// IsFrequentCustomer makes the user unconditionally eligible for the
	// FREQUENT_5 discount. Owned by the user collaborator, read here.
	IsFrequentCustomer bool
}

// Principal is the validated identity the auth collaborator hands to the
// engine. The engine trusts id and role as given.
type Principal struct {
	UserID uint64
	Role   Role
}
