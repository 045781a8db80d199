package validator

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewPayload struct {
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=10"`
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(reviewPayload{UserID: 1, Rating: 3, Comment: "fine"}))
}

func TestValidate_FieldsUseJSONNames(t *testing.T) {
	err := Validate(reviewPayload{UserID: 0, Rating: 9, Comment: strings.Repeat("x", 11)})
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["userId"])
	assert.Equal(t, "must be at most 5", fields["rating"])
	assert.Equal(t, "must be at most 10 characters", fields["comment"])
}

func TestValidate_ErrorString(t *testing.T) {
	err := Validate(reviewPayload{UserID: -1, Rating: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'userId' must be greater than 0")
}

func TestValidate_MinNumeric(t *testing.T) {
	err := Validate(reviewPayload{UserID: 1, Rating: 0})
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "must be at least 1", valErr.Fields()["rating"])
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"userId":4,"rating":2}`))
	var dst reviewPayload
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, int64(4), dst.UserID)

	bad := httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))
	err := DecodeAndValidate(bad, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
