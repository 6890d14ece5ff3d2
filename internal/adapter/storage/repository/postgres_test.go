package repository

import (
	"errors"
	"testing"

	"github.com/shopmart/orderengine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestDBError(t *testing.T) {
	err := dbError(errors.New("connection refused"))

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
}
