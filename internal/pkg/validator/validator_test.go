package validator

import (
	"testing"

	"github.com/listing-microservice/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	City     string  `json:"city" validate:"notblank"`
	Price    float64 `json:"price" validate:"gte=0"`
	Currency string  `json:"currency" validate:"currency"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(sample{City: "Varna", Price: 10, Currency: "EUR"}))

	err := Validate(sample{City: "  ", Price: -5, Currency: "eur"})
	require.Error(t, err)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Contains(t, appErr.Details, "city")
	assert.Contains(t, appErr.Details, "price")
	assert.Contains(t, appErr.Details, "currency")
}
