package auth

import (
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
)

const tokenDuration = 24 * time.Hour

// PasetoToken issues the bearer credential the engine hands out on login.
// The payload carries the id and role claim the engine later trusts.
type PasetoToken struct {
	parser *paseto.Parser
	key    *paseto.V4SymmetricKey
}

func New() (port.TokenService, error) {
	parser := paseto.NewParser()
	key := paseto.NewV4SymmetricKey()

	s := PasetoToken{
		parser: &parser,
		key:    &key,
	}

	return &s, nil
}

func (p *PasetoToken) CreateToken(user *domain.User) (string, error) {
	token := paseto.NewToken()
	token.SetExpiration(time.Now().Add(tokenDuration))

	payload := port.TokenPayload{UserID: user.ID, Role: user.Role}
	err := token.Set("payload", payload)
	if err != nil {
		return "", domain.ErrTokenCreation
	}

	return token.V4Encrypt(*p.key, nil), nil
}

func (p *PasetoToken) VerifyToken(token string) (*port.TokenPayload, error) {
	parsedToken, err := p.parser.ParseV4Local(*p.key, token, nil)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	payload := port.TokenPayload{}
	err = parsedToken.Get("payload", &payload)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if payload.Role != domain.RoleAdmin && payload.Role != domain.RoleCustomer {
		return nil, domain.ErrInvalidToken
	}
	return &payload, nil
}
