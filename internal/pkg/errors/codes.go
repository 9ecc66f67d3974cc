package errors

import "net/http"

var (
	ErrValidation = New(
		"VALIDATION_ERROR",
		"Validation failed",
		http.StatusBadRequest,
	)

	ErrListingNotFound = New(
		"LISTING_NOT_FOUND",
		"not found",
		http.StatusNotFound,
	)

	ErrUnauthorized = New(
		"UNAUTHORIZED",
		"Invalid or missing credentials",
		http.StatusUnauthorized,
	)

	ErrStorage = New(
		"STORAGE_ERROR",
		"Storage operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrListingInactive = New(
		"LISTING_INACTIVE",
		"Listing is not active",
		http.StatusConflict,
	)

	ErrRateLimited = New(
		"RATE_LIMITED",
		"Too many requests",
		http.StatusTooManyRequests,
	)

	ErrFeatureDisabled = New(
		"FEATURE_DISABLED",
		"Feature is not configured",
		http.StatusServiceUnavailable,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
