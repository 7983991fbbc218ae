package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/response"
	appValidator "github.com/ansaf01/fg-united/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation
// rules. Validation failures are rendered as field-keyed errors so the
// storefront can redisplay the form.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		if ve, ok := err.(appValidator.ValidationErrors); ok {
			response.Error(c, appErrors.NewValidation(fieldMessages(ve)))
			return false
		}
		response.Error(c, appErrors.NewBadRequest("invalid request payload"))
		return false
	}

	return true
}

func fieldMessages(failures appValidator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(failures))
	for _, failure := range failures {
		name := prettifyFieldName(failure.Field)
		switch failure.Tag {
		case "required":
			fields[failure.Field] = capitalize(name) + " is required"
		case "email":
			fields[failure.Field] = "Enter a valid email address"
		case "min":
			fields[failure.Field] = "Must be at least " + failure.Param + " characters"
		case "max":
			fields[failure.Field] = "Must be at most " + failure.Param + " characters"
		case "fullname":
			fields[failure.Field] = "Enter your first and last name using letters only"
		case "mobile_in":
			fields[failure.Field] = "Enter a valid 10 digit mobile number"
		case "eqfield":
			fields[failure.Field] = "Values do not match"
		default:
			fields[failure.Field] = "Invalid value"
		}
	}
	return fields
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func prettifyFieldName(name string) string {
	if name == "" {
		return "field"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToLower(name)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloatQuery(c *gin.Context, key string) float64 {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}
