package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/shopmart/orderengine/internal/core/port"
)

const authHeaderKey = "Authorization"
const authType = "Bearer"
const principalKey = "principal"

func authCheck(tokenService port.TokenService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.Request.Header.Get(authHeaderKey)
		if len(header) == 0 {
			abortAuth(ctx, domain.ErrEmptyAuthorizationHeader)
			return
		}

		words := strings.Split(header, " ")
		if len(words) != 2 {
			abortAuth(ctx, domain.ErrInvalidAuthorizationHeader)
			return
		}
		if words[0] != authType {
			abortAuth(ctx, domain.ErrInvalidAuthorizationType)
			return
		}

		payload, err := tokenService.VerifyToken(words[1])
		if err != nil {
			abortAuth(ctx, domain.ErrInvalidToken)
			return
		}

		ctx.Set(principalKey, domain.Principal{UserID: payload.UserID, Role: payload.Role})
		ctx.Next()
	}
}

func abortAuth(ctx *gin.Context, err error) {
	statusCode, known := statusFromError(err)
	if !known {
		statusCode = http.StatusUnauthorized
	}
	ctx.AbortWithStatusJSON(statusCode, gin.H{"error": err.Error()})
}

func getPrincipal(ctx *gin.Context) domain.Principal {
	return ctx.MustGet(principalKey).(domain.Principal)
}
