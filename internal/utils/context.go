package utils

import (
	"context"
)

type ctxKey string

const (
	userIDKey    ctxKey = "userID"
	userEmailKey ctxKey = "userEmail"
	userRoleKey  ctxKey = "userRole"
)

// SetUserContext stores the authenticated user's identity on the context.
func SetUserContext(ctx context.Context, userID, email, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userEmailKey, email)
	ctx = context.WithValue(ctx, userRoleKey, role)
	return ctx
}

// GetUserIDFromContext returns the verified user id, if any.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userEmailKey).(string)
	return v, ok && v != ""
}

func IsAdmin(ctx context.Context) bool {
	role, _ := ctx.Value(userRoleKey).(string)
	return role == "admin"
}
