package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KilimcininKorOglu/obaschema/internal/schema"
)

// Response is the envelope of every API response.
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Errors    []ErrorItem `json:"errors,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ErrorItem is one problem reported with a failed request.
type ErrorItem struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:      http.StatusOK,
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func fail(c *gin.Context, status int, message string, items ...ErrorItem) {
	c.AbortWithStatusJSON(status, Response{
		Code:      status,
		Message:   message,
		Errors:    items,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// mapSchemaError maps a schema error to an HTTP status and error item.
func mapSchemaError(err error) (int, ErrorItem) {
	item := ErrorItem{Message: err.Error()}

	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		item.Field = verr.Attr
		item.Code = verr.Violation.String()
		return http.StatusUnprocessableEntity, item
	}

	code := schema.CodeOf(err)
	item.Code = code.String()
	item.Field = schema.TokenOf(err)
	switch {
	case code == schema.CodeUnknown:
		return http.StatusInternalServerError, item
	case code.Fatal():
		return http.StatusRequestEntityTooLarge, item
	default:
		return http.StatusBadRequest, item
	}
}
