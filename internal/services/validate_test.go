package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStructReportsWireNames(t *testing.T) {
	err := validateStruct("invalid_request", ErrInvalidRequest, RegisterInput{Password: "long-enough"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "email is required")

	err = validateStruct("invalid_request", ErrInvalidRequest, RegisterInput{Email: "a@example.com", Password: "long-enough"})
	assert.NoError(t, err)
}

func TestFieldErrorMessageUsesYAMLPath(t *testing.T) {
	b := SeedBundle{Category: "coding", Items: []SeedItem{{ID: 1, Title: "Two Sum", Prompt: "p"}, {ID: 2, Prompt: "p"}}}
	err := validate.Struct(b)
	require.Error(t, err)
	assert.Equal(t, "items[1].title is required", fieldErrorMessage(err))

	err = validate.Struct(SeedBundle{Category: "coding", Items: []SeedItem{}})
	require.Error(t, err)
	assert.Equal(t, "items needs at least 1 entries", fieldErrorMessage(err))
}

func TestValidateVarBounds(t *testing.T) {
	assert.NoError(t, validateVar("invalid_points", ErrInvalidPoints, "amount", 10, "gte=1,lte=10"))

	err := validateVar("invalid_points", ErrInvalidPoints, "amount", 11, "gte=1,lte=10")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPoints)
	assert.Contains(t, err.Error(), "amount must be at most 10")

	err = validateVar("invalid_points", ErrInvalidPoints, "amount", 0, "gte=1,lte=10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 1")
}
