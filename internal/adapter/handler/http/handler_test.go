package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expCode  int
		expKnown bool
	}{
		{name: "persistence failure", err: domain.ErrPersistence, expCode: http.StatusInternalServerError, expKnown: true},
		{name: "wrapped persistence failure", err: fmt.Errorf("%w: connection reset", domain.ErrPersistence), expCode: http.StatusInternalServerError, expKnown: true},
		{name: "insufficient stock", err: domain.ErrInsufficientStock, expCode: http.StatusConflict, expKnown: true},
		{name: "already finalized", err: domain.ErrAlreadyFinalized, expCode: http.StatusUnprocessableEntity, expKnown: true},
		{name: "wrapped forbidden", err: fmt.Errorf("reject order: %w", domain.ErrForbidden), expCode: http.StatusForbidden, expKnown: true},
		{name: "unknown error", err: errors.New("boom"), expCode: http.StatusInternalServerError, expKnown: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, known := statusFromError(test.err)
			assert.Equal(t, test.expCode, code)
			assert.Equal(t, test.expKnown, known)
		})
	}
}
