package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tierlist/pkg/apperr"
)

func init() { gin.SetMode(gin.TestMode) }

func perform(t *testing.T, fn gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorMapsKinds(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) {
		Error(c, apperr.Conflict("item already exists", gin.H{"id": "x"}))
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, body.Code)
	assert.Equal(t, "item already exists", body.Message)
	assert.Equal(t, map[string]interface{}{"id": "x"}, body.Data)

	w, _ = perform(t, func(c *gin.Context) { Error(c, apperr.Validation("bad tier")) })
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = perform(t, func(c *gin.Context) {
		Error(c, apperr.RetryableConflict("retry", errors.New("dup")))
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestErrorHidesUnexpected(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) { Error(c, errors.New("pq: connection refused")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", body.Message)
}

func TestSuccess(t *testing.T) {
	w, body := perform(t, func(c *gin.Context) { Success(c, gin.H{"ok": true}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body.Message)
}
