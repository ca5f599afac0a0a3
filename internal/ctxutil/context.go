// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	studentIDKey contextKey = "ctxutil.studentID"
	requestIDKey contextKey = "ctxutil.requestID"
)

// WithStudentID adds a student ID to the context.
// Student ID comes from the chat and refresh API requests and is used
// for rate limiting and log correlation.
func WithStudentID(ctx context.Context, studentID string) context.Context {
	return context.WithValue(ctx, studentIDKey, studentID)
}

// GetStudentID retrieves the student ID from the context.
// Returns the student ID if found, empty string otherwise.
func GetStudentID(ctx context.Context) string {
	if v := ctx.Value(studentIDKey); v != nil {
		if studentID, ok := v.(string); ok && studentID != "" {
			return studentID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context for tracing.
// Request ID is taken from the X-Request-Id header, or generated per
// request, for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// PreserveTracing creates a detached context that preserves tracing values.
// The new context is independent of the parent's cancellation and deadlines.
//
// This function creates a fresh context.Background() and copies only tracing
// values, avoiding memory leaks from retaining parent context references.
//
// Use for async operations that need tracing but must outlive the request,
// such as a refresh that continues after the HTTP response is sent.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if studentID := GetStudentID(ctx); studentID != "" {
		newCtx = WithStudentID(newCtx, studentID)
	}
	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		newCtx = WithRequestID(newCtx, requestID)
	}

	return newCtx
}
