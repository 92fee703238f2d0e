package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey      contextKey = "userID"
	requestInfoKey contextKey = "requestInfo"
)

// requestInfo is shared by pointer so outer middlewares can see values set
// further down the chain.
type requestInfo struct {
	requestID string
	userID    string
}

func infoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}

// ContextWithRequestID returns a context carrying requestID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if info := infoFrom(ctx); info != nil {
		info.requestID = requestID
		return ctx
	}
	return context.WithValue(ctx, requestInfoKey, &requestInfo{requestID: requestID})
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	if info := infoFrom(r.Context()); info != nil {
		return info.requestID
	}
	return ""
}

// UserIDFrom retrieves the authenticated user ID, or "" for anonymous requests.
func UserIDFrom(r *http.Request) string {
	return UserIDFromContext(r.Context())
}

func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithUser returns a new context with the user ID.
func ContextWithUser(ctx context.Context, userID string) context.Context {
	if info := infoFrom(ctx); info != nil {
		info.userID = userID
	}
	return context.WithValue(ctx, userIDKey, userID)
}

func loggedUserID(r *http.Request) string {
	if info := infoFrom(r.Context()); info != nil {
		return info.userID
	}
	return UserIDFrom(r)
}
