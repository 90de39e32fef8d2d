package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
)

// Err is the single error envelope of the API.
type Err struct {
	Err        error             `json:"-"`
	StatusCode int               `json:"status_code"`
	StatusText string            `json:"status_text"`
	ErrorMsg   string            `json:"error,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`

	retryAfter time.Duration
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.StatusText
	}

	return e.Err.Error()
}

func (e *Err) Unwrap() error {
	return e.Err
}

func newErr(status int, err error, msg string) *Err {
	return &Err{
		Err:        err,
		StatusCode: status,
		StatusText: http.StatusText(status),
		ErrorMsg:   msg,
	}
}

// ErrBadRequest reports a validation failure. ozzo field errors and JSON
// type mismatches are exposed one entry per field.
func ErrBadRequest(err error) *Err {
	e := newErr(http.StatusBadRequest, err, err.Error())

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		err = validation.Errors{typeErr.Field: fmt.Errorf("a valid %s is required", typeErr.Type)}
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		e.ErrorMsg = "validation failed"
		e.Fields = make(map[string]string, len(fieldErrs))
		for field, fe := range fieldErrs {
			e.Fields[field] = fe.Error()
		}
	}

	return e
}

// ErrFieldInvalid is a validation failure on one named field.
func ErrFieldInvalid(field string, err error) *Err {
	return ErrBadRequest(validation.Errors{field: err})
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, err, "authentication credentials were not provided or are invalid")
}

func ErrWrongCredentials(err error) *Err {
	return newErr(http.StatusUnauthorized, err, "no active account found with the given credentials")
}

// ErrNotFound carries the same message whether the resource is missing or
// belongs to somebody else.
func ErrNotFound(resource, field string, value any) *Err {
	err := fmt.Errorf("%s with %s=%v not found", resource, field, value)

	return newErr(http.StatusNotFound, err, err.Error())
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err, err.Error())
}

func ErrTooManyRequests(retryAfter time.Duration) *Err {
	e := newErr(http.StatusTooManyRequests, nil, "too many requests, try again later")
	e.retryAfter = retryAfter

	return e
}

// ErrInternalServerError hides err from the client; it is only logged.
func ErrInternalServerError(err error) *Err {
	return newErr(http.StatusInternalServerError, err, "internal server error")
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("requestID", requestid.Get(ctx)),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.Error(e.Err),
		)
	}
	if e.retryAfter > 0 {
		secs := int(e.retryAfter.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		ctx.Header("Retry-After", strconv.Itoa(secs))
	}

	ctx.AbortWithStatusJSON(e.StatusCode, e)
}
