package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/gocomet/carpool/pkg/errors"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// RespondError aborts the request with err mapped to its status and body
func RespondError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.Status, ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
