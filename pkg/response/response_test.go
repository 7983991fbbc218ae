package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ansaf01/fg-united/pkg/errors"
)

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return recorder
}

func TestSuccessEnvelope(t *testing.T) {
	recorder := performRequest(func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"hello": "world"})
	})

	require.Equal(t, http.StatusOK, recorder.Code)

	var payload Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Nil(t, payload.Error)
}

func TestRedirectCarriesTarget(t *testing.T) {
	recorder := performRequest(func(c *gin.Context) {
		Redirect(c, "/otp")
	})

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			Redirect string `json:"redirect"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Equal(t, "/otp", payload.Data.Redirect)
}

func TestErrorRendersFields(t *testing.T) {
	recorder := performRequest(func(c *gin.Context) {
		Error(c, appErrors.NewValidation(map[string]string{"email": "Email is required"}))
	})

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	var payload Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.NotNil(t, payload.Error)
	require.Equal(t, "VALIDATION_ERROR", payload.Error.Code)
	require.Equal(t, "Email is required", payload.Error.Fields["email"])
}

func TestErrorDefaultsToInternal(t *testing.T) {
	recorder := performRequest(func(c *gin.Context) {
		Error(c, nil)
	})

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}
