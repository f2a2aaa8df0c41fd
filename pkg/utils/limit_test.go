package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetLimitParam(t *testing.T) {
	e := echo.New()

	tests := []struct {
		query string
		want  int
	}{
		{"", 100},
		{"?limit=20", 20},
		{"?limit=abc", 100},
		{"?limit=-1", 100},
		{"?limit=500", 100},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/v1/chat/messages"+tt.query, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, tt.want, GetLimitParam(c, 100, 200), tt.query)
	}
}
