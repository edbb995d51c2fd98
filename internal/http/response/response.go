package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps a service-layer error onto the envelope, defaulting
// status and code when the service left them unset.
func RespondAPIError(c *gin.Context, apiErr *apierr.Error) {
	status := apiErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	code := apiErr.Code
	if code == "" {
		code = "internal_error"
	}
	RespondError(c, status, code, apiErr)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
