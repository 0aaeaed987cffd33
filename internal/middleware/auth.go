package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/launchpanel/hub/internal/model"
)

type contextKey string

const ctxOperator contextKey = "operator"

// AuthMiddleware requires Authorization: Bearer <token> and injects the
// validated operator into the request context.
func AuthMiddleware(validateToken func(token string) (*model.Operator, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, `{"error":{"code":"E_UNAUTHORIZED","message":"missing token"}}`, http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")
			op, err := validateToken(token)
			if err != nil {
				http.Error(w, `{"error":{"code":"E_UNAUTHORIZED","message":"invalid or expired token"}}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxOperator, op)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorFromCtx extracts the authenticated operator from context.
func OperatorFromCtx(ctx context.Context) *model.Operator {
	op, _ := ctx.Value(ctxOperator).(*model.Operator)
	return op
}
