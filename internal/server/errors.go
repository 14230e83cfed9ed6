package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	invoicedomain "github.com/guidebooker/invoice-service/internal/invoice/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware maps errors collected on the context into one
// structured response after the handler chain runs.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var amountErr *invoicedomain.InvalidAmountError
	if errors.As(err, &amountErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   amountErr.Field,
					Code:    "invalid_amount",
					Message: amountErr.Reason,
				},
			},
		}
	}

	// Layout failures point at a document-capacity limit, not a malformed
	// request; the offending field is logged, not echoed.
	if errors.Is(err, invoicedomain.ErrLayout) {
		return http.StatusInternalServerError, errorPayload{
			Type:    "layout_error",
			Message: "the invoice could not be laid out",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// bindError converts a gin binding failure into the validation payload.
func bindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := &ValidationErrors{Errors: make([]ValidationError, 0, len(fieldErrs))}
		for _, fe := range fieldErrs {
			out.Errors = append(out.Errors, ValidationError{
				Field:   snakeCase(fe.Field()),
				Code:    bindCode(fe.Tag()),
				Message: bindMessage(fe.Tag()),
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationErrors{
			Errors: []ValidationError{
				{Field: typeErr.Field, Code: "invalid_type", Message: "unexpected value type"},
			},
		}
	}

	return &ValidationErrors{
		Errors: []ValidationError{
			{Field: "request", Code: "invalid_request", Message: "malformed request body"},
		},
	}
}

func bindCode(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "email":
		return "invalid_email"
	case "min":
		return "too_few"
	case "datetime":
		return "invalid_date"
	default:
		return "invalid_value"
	}
}

func bindMessage(tag string) string {
	switch tag {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "not enough elements"
	case "datetime":
		return "must be a date formatted YYYY-MM-DD"
	default:
		return "invalid value"
	}
}

func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}

	if vErr := asValidationErrors(err); vErr != nil {
		code := ""
		if len(vErr.Errors) > 0 {
			code = vErr.Errors[0].Code
		}
		return "validation_error", code
	}

	var amountErr *invoicedomain.InvalidAmountError
	if errors.As(err, &amountErr) {
		return "validation_error", "invalid_amount"
	}
	if errors.Is(err, invoicedomain.ErrLayout) {
		return "layout_error", "layout_error"
	}
	return "internal_error", "internal_error"
}

func snakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
