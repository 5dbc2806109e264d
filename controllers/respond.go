package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dcode-github/property_management_system/backend/models"
	"github.com/dcode-github/property_management_system/backend/services"
	"github.com/redis/go-redis/v9"
)

type ContextKey string

const (
	UserIDKey  = ContextKey("userID")
	IsAdminKey = ContextKey("isAdmin")
)

func writeJSON(w http.ResponseWriter, status int, resp models.APIResponse) {
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, models.APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondError(w http.ResponseWriter, status int, message, errMsg string, details map[string]interface{}) {
	writeJSON(w, status, models.APIResponse{
		Success: false,
		Error:   errMsg,
		Details: details,
		Message: message,
	})
}

// respondServiceError renders a definite failure envelope for any error a
// service let through: not-found and validation get their status, everything
// else is a 500 with the internals kept out of the body.
func respondServiceError(w http.ResponseWriter, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, "Property not found", "not_found", nil)
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, vErr.Error(), "validation_error", map[string]interface{}{
			"field":  vErr.Field,
			"reason": vErr.Reason,
		})
	default:
		log.Printf("Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error", "internal_error", nil)
	}
}

// respondSuccessCached writes the success envelope and stores the exact
// bytes in redis so cache hits replay the identical response.
func respondSuccessCached(w http.ResponseWriter, r *http.Request, redisClient *redis.Client, cacheKey, message string, data interface{}) {
	resp := models.APIResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to serialize response: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to encode response", "internal_error", nil)
		return
	}
	if redisClient != nil {
		if err := redisClient.Set(r.Context(), cacheKey, body, listCacheTTL).Err(); err != nil {
			log.Printf("Failed to cache response for key %s: %v", cacheKey, err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func requestUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		log.Println("User ID missing in context")
		respondError(w, http.StatusUnauthorized, "User ID missing in context", "unauthorized", nil)
		return "", false
	}
	return userID, true
}
