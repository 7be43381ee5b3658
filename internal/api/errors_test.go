package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError_Classification(t *testing.T) {
	t.Run("429 is quota exceeded", func(t *testing.T) {
		err := &StatusError{StatusCode: http.StatusTooManyRequests, Detail: "Daily chat limit reached"}
		assert.True(t, err.QuotaExceeded())
		assert.False(t, err.NotFound())
		assert.False(t, err.UpgradeRequired())
	})

	t.Run("404 is not found", func(t *testing.T) {
		err := &StatusError{StatusCode: http.StatusNotFound, Detail: "Portfolio not found"}
		assert.True(t, err.NotFound())
		assert.False(t, err.QuotaExceeded())
	})

	t.Run("403 is upgrade required", func(t *testing.T) {
		err := &StatusError{StatusCode: http.StatusForbidden}
		assert.True(t, err.UpgradeRequired())
	})

	t.Run("500 is none of the above", func(t *testing.T) {
		err := &StatusError{StatusCode: http.StatusInternalServerError, Detail: "Chat service error"}
		assert.False(t, err.QuotaExceeded())
		assert.False(t, err.NotFound())
		assert.False(t, err.UpgradeRequired())
	})
}

func TestStatusError_Message(t *testing.T) {
	err := &StatusError{StatusCode: 404, Detail: "Portfolio not found"}
	assert.Equal(t, "backend request failed with status 404: Portfolio not found", err.Error())

	bare := &StatusError{StatusCode: 500}
	assert.Equal(t, "backend request failed with status 500", bare.Error())
}

func TestStatusError_SurvivesWrapping(t *testing.T) {
	inner := &StatusError{StatusCode: http.StatusTooManyRequests, Detail: "limit"}
	wrapped := fmt.Errorf("asking question: %w", inner)

	var statusErr *StatusError
	if assert.True(t, errors.As(wrapped, &statusErr)) {
		assert.True(t, statusErr.QuotaExceeded())
	}
}

func TestNewStatusError_DetailEnvelope(t *testing.T) {
	t.Run("parses detail field", func(t *testing.T) {
		err := newStatusError(400, []byte(`{"detail": "This URL is already taken"}`))
		assert.Equal(t, "This URL is already taken", err.Detail)
	})

	t.Run("falls back to raw body", func(t *testing.T) {
		err := newStatusError(502, []byte("bad gateway"))
		assert.Equal(t, "bad gateway", err.Detail)
	})

	t.Run("empty body", func(t *testing.T) {
		err := newStatusError(500, nil)
		assert.Equal(t, "", err.Detail)
	})
}
