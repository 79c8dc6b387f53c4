package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shelfwise/shelfwise/internal/platform/httpx"
	"github.com/shelfwise/shelfwise/internal/shared"
)

// Gate runs the verifier in front of protected handlers: it extracts the
// bearer token, verifies it, and either injects the principal into the
// request context or short-circuits with a 401 outcome. No handler code
// runs on failure, and nothing is retried.
type Gate struct {
	verifier *Verifier
	logger   *slog.Logger
}

// NewGate constructs the request gate.
func NewGate(verifier *Verifier, logger *slog.Logger) *Gate {
	return &Gate{verifier: verifier, logger: logger}
}

// Require is the middleware protecting authenticated routes.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			g.reject(w, &VerifyError{Kind: FailureMissingToken})
			return
		}
		principal, err := g.verifier.Verify(r.Context(), raw)
		if err != nil {
			var verr *VerifyError
			if errors.As(err, &verr) {
				g.reject(w, verr)
				return
			}
			httpx.Error(w, g.logger, shared.Internal("token verification failed", err))
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireManager restricts a route to the privileged role. It assumes
// Require already ran; a missing principal is rejected the same way.
func (g *Gate) RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := shared.PrincipalFromContext(r.Context())
		if !ok || !principal.IsManager() {
			httpx.Error(w, g.logger, shared.Unauthorized("manager role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// reject resolves an auth failure to its single externally visible outcome.
// The kind is logged; the client only ever sees 401 UNAUTHORIZED.
func (g *Gate) reject(w http.ResponseWriter, verr *VerifyError) {
	if g.logger != nil {
		g.logger.Warn("request rejected", slog.String("reason", verr.Kind.String()))
	}
	msg := "invalid or expired token"
	if verr.Kind == FailureMissingToken {
		msg = "authentication required"
	}
	httpx.Error(w, g.logger, shared.Unauthorized(msg))
}

// bearerToken extracts the opaque token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
