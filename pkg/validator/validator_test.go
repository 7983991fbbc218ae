package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type signupForm struct {
	FullName string `json:"fullname" validate:"required,fullname"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"required,mobile_in"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidateStructPasses(t *testing.T) {
	form := signupForm{
		FullName: "Asha Nair",
		Email:    "asha@example.com",
		Mobile:   "9876543210",
		Password: "secret1",
	}
	require.NoError(t, ValidateStruct(form))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	form := signupForm{
		FullName: "Asha",
		Email:    "not-an-email",
		Mobile:   "12345",
		Password: "abc",
	}

	err := ValidateStruct(form)
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)

	fields := make(map[string]string, len(failures))
	for _, failure := range failures {
		fields[failure.Field] = failure.Tag
	}

	require.Contains(t, fields, "fullname")
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "mobile")
	require.Contains(t, fields, "password")
}

func TestIsFullName(t *testing.T) {
	require.True(t, IsFullName("Asha Nair"))
	require.True(t, IsFullName("  Mary Ann Thomas "))
	require.False(t, IsFullName("Asha"))
	require.False(t, IsFullName("Asha2 Nair"))
	require.False(t, IsFullName(""))
}

func TestIsMobile(t *testing.T) {
	require.True(t, IsMobile("9876543210"))
	require.True(t, IsMobile("5000000000"))
	require.False(t, IsMobile("4876543210"))
	require.False(t, IsMobile("98765"))
	require.False(t, IsMobile("98765432100"))
}
