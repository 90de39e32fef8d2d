package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, e *Err) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RenderErr(ctx, e)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec, body
}

func TestRenderErr_ValidationFields(t *testing.T) {
	err := validation.Errors{"price": errors.New("must be no less than 0")}

	rec, body := render(t, ErrBadRequest(err))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, float64(400), body["status_code"])
	assert.Equal(t, "Bad Request", body["status_text"])
	assert.Equal(t, map[string]any{"price": "must be no less than 0"}, body["fields"])
}

func TestRenderErr_InternalHidesDetails(t *testing.T) {
	rec, body := render(t, ErrInternalServerError(errors.New("pq: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRenderErr_NotFoundIsUniform(t *testing.T) {
	_, a := render(t, ErrNotFound("item", "id", 7))
	_, b := render(t, ErrNotFound("item", "id", 7))

	assert.Equal(t, a, b)
	assert.Equal(t, "item with id=7 not found", a["error"])
}

func TestRenderErr_RetryAfter(t *testing.T) {
	rec, _ := render(t, ErrTooManyRequests(1500*time.Millisecond))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestRenderErr_JSONTypeMismatchIsFieldError(t *testing.T) {
	var body struct {
		Username string `json:"username"`
	}
	decodeErr := json.Unmarshal([]byte(`{"username":42}`), &body)
	require.Error(t, decodeErr)

	rec, got := render(t, ErrBadRequest(decodeErr))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation failed", got["error"])
	assert.Equal(t, map[string]any{"username": "a valid string is required"}, got["fields"])
}
