package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	deliverycontext "folio/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware_Process(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantEcho bool
	}{
		{name: "client id is reused", header: "abc-123", wantEcho: true},
		{name: "missing id is generated"},
		{name: "oversized id is replaced", header: strings.Repeat("a", 129)},
		{name: "id with spaces is replaced", header: "abc 123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewRequestIDMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(deliverycontext.HeaderXRequestID, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen string
			err := m.Process(func(c echo.Context) error {
				seen = deliverycontext.GetRequestIDFromContext(c.Request().Context())
				assert.NotNil(t, deliverycontext.GetLogger(c.Request().Context()))

				return nil
			})(c)
			require.NoError(t, err)

			assert.Equal(t, seen, deliverycontext.GetRequestID(c))
			assert.Equal(t, seen, rec.Header().Get(deliverycontext.HeaderXRequestID))
			if tt.wantEcho {
				assert.Equal(t, tt.header, seen)
			} else {
				_, parseErr := uuid.Parse(seen)
				assert.NoError(t, parseErr)
			}
		})
	}
}
