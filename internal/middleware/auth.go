package middleware

import (
	"net/http"
	"strings"

	"dokan-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

// Auth verifies the Bearer token and stores the user's identity on the
// request context. Requests without an Authorization header pass through
// anonymously; handlers that require identity reject those themselves. A
// present but invalid token is rejected here.
func Auth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				utils.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				utils.WriteJSONError(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			userID, _ := claims["user_id"].(string)
			email, _ := claims["email"].(string)
			role, _ := claims["role"].(string)
			if userID == "" {
				utils.WriteJSONError(w, "invalid token claims", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, email, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
