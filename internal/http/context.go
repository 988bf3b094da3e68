package http

import (
	"context"
	"log/slog"

	"github.com/example/fitness-manager/internal/application"
	"github.com/example/fitness-manager/internal/logging"
)

type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithLogger attaches the request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

func defaultLogger(logger *slog.Logger) *slog.Logger { return logging.Or(logger) }

// handlerLogger tags the request logger with the handler and, once the session
// middleware has run, the acting account.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := logging.Scoped(ctx, fallback, "handler", handlerName, operation, attrs...)
	if principal, ok := PrincipalFromContext(ctx); ok {
		logger = logger.With("principal_id", principal.AccountID, "principal_role", principal.Role)
	}
	return logger
}
