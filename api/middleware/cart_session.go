package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rosema/rosema-backend/api/responses"
	pkgerrors "github.com/rosema/rosema-backend/pkg/errors"
	"github.com/rosema/rosema-backend/pkg/logger"
)

// DefaultCartSessionHeader carries the storefront session id.
const DefaultCartSessionHeader = "X-Cart-Session"

const maxCartSessionLength = 128

// CartSession resolves the storefront session id from header, minting one
// when absent. The id is echoed back so the browser can keep it.
func CartSession(header string, logg *logger.Logger) func(http.Handler) http.Handler {
	if strings.TrimSpace(header) == "" {
		header = DefaultCartSessionHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(header))
			if sessionID == "" {
				sessionID = uuid.NewString()
			} else if !validSessionID(sessionID) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart session").
					WithDetails(map[string]any{"header": header}))
				return
			}

			w.Header().Set(header, sessionID)

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validSessionID(id string) bool {
	if len(id) > maxCartSessionLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
