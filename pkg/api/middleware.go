package api

import (
	"context"
	"crypto/subtle"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/ssargent/bytestream/pkg/codec"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type contextKey string

const orderKey contextKey = "byte-order"

// apiKeyMiddleware validates the X-API-Key header
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	expected := []byte(expectedKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(apiKey), expected) != 1 {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// byteOrderMiddleware resolves ?order= (big or little) into the request
// context, falling back to defaultOrder when the parameter is absent
func byteOrderMiddleware(defaultOrder codec.ByteOrder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order := defaultOrder
			if raw := r.URL.Query().Get("order"); raw != "" {
				parsed, err := codec.ParseByteOrder(raw)
				if err != nil {
					sendError(w, err.Error(), http.StatusBadRequest)
					return
				}
				order = parsed
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), orderKey, order)))
		})
	}
}

// orderFrom returns the order chosen by byteOrderMiddleware
func orderFrom(ctx context.Context, fallback codec.ByteOrder) codec.ByteOrder {
	if order, ok := ctx.Value(orderKey).(codec.ByteOrder); ok {
		return order
	}
	return fallback
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

func sendJSON(w http.ResponseWriter, statusCode int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}
