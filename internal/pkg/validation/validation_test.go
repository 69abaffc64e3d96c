package validation_test

import (
	"testing"

	"github.com/YouSangSon/reports-service/internal/pkg/errors"
	"github.com/YouSangSon/reports-service/internal/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `form:"role" validate:"omitempty,oneof=admin member"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, validation.Struct(&signup{Username: "ada", Email: "ada@example.com", Role: "admin"}))
}

func TestStruct_ReportsEveryFieldByTagName(t *testing.T) {
	err := validation.Struct(&signup{Username: "a", Email: "nope", Role: "root"})

	require.Error(t, err)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	assert.Equal(t, "invalid input", appErr.Message)
	assert.Contains(t, appErr.Details, "username must be >= 3")
	assert.Contains(t, appErr.Details, "email must be a valid email address")
	assert.Contains(t, appErr.Details, "role must be one of [admin member]")
}

func TestStruct_Required(t *testing.T) {
	err := validation.Struct(&signup{})

	require.Error(t, err)
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "username is required")
	assert.Contains(t, appErr.Details, "email is required")
}
