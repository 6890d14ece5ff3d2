package domain

import (
	"errors"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")
	ErrPersistence     = errors.New("persistence failure")

	// * Communication errors.
	ErrBadRequest      = errors.New("error parsing request")
	ErrValidation      = errors.New("request failed validation")
	ErrBadOrderStatus  = errors.New("unknown order status")
	ErrBadDiscountType = errors.New("unknown discount type")

	// * Authority errors.
	ErrTokenCreation              = errors.New("error creating token")
	ErrExpiredToken               = errors.New("access token has expired")
	ErrInvalidToken               = errors.New("access token is invalid")
	ErrInvalidCredentials         = errors.New("invalid login or password")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")
	ErrInvalidAuthorizationType   = errors.New("authorization type is not supported")
	ErrForbidden                  = errors.New("user is forbidden to access the resource")

	// * Business errors.
	ErrInsufficientStock = errors.New("not enough stock for requested quantity")
	ErrProductInactive   = errors.New("product is not active")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
	ErrAlreadyFinalized  = errors.New("order is already finalized")
)
