package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/dcode-github/property_management_system/backend/services"
	"github.com/dcode-github/property_management_system/backend/utils"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

const listCacheTTL = 10 * time.Minute

func CreateProperty(svc *services.PropertyService, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		input, uploads, err := decodeCreateRequest(r)
		if err != nil {
			log.Printf("Invalid create request: %v", err)
			respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request", nil)
			return
		}
		if err := input.Validate(); err != nil {
			respondServiceError(w, err)
			return
		}

		result, err := svc.Create(r.Context(), userID, input, uploads)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		go invalidateListCache(redisClient)

		respondSuccess(w, http.StatusCreated, "Property created successfully", map[string]interface{}{
			"property": result.Property,
			"meta": map[string]interface{}{
				"images_count":  result.ImagesCount,
				"images_failed": result.ImagesFailed,
			},
		})
	}
}

func GetAllProperties(svc *services.PropertyService, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		query := r.URL.Query()
		cacheKey := listCacheKey(userID, query)

		if redisClient != nil {
			cachedData, err := redisClient.Get(r.Context(), cacheKey).Result()
			if err == nil {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(cachedData))
				return
			}
			if err != redis.Nil {
				log.Printf("Redis GET error for key %s: %v", cacheKey, err)
			}
		}

		result, err := svc.List(r.Context(), userID, services.ListQuery{
			PropertyType: query.Get("property_type"),
			City:         query.Get("city"),
			Sort:         utils.ParseSort(query),
			Page:         utils.ParsePage(query),
		})
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondSuccessCached(w, r, redisClient, cacheKey, "Fetched properties", result)
	}
}

func GetProperty(svc *services.PropertyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		view, err := svc.Get(r.Context(), userID, mux.Vars(r)["id"], r.URL.Query().Get("include"))
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, "Fetched property", map[string]interface{}{"property": view})
	}
}

func UpdateProperty(svc *services.PropertyService, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		patch, uploads, deleteRefs, err := decodeUpdateRequest(r)
		if err != nil {
			log.Printf("Invalid update request: %v", err)
			respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request", nil)
			return
		}
		if err := patch.Validate(); err != nil {
			respondServiceError(w, err)
			return
		}

		result, err := svc.Update(r.Context(), userID, mux.Vars(r)["id"], patch, uploads, deleteRefs)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		go invalidateListCache(redisClient)

		message := "Property updated successfully"
		if result.ChangesCount == 0 {
			message = "No changes detected"
		}
		respondSuccess(w, http.StatusOK, message, result)
	}
}

func DeleteProperty(svc *services.PropertyService, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		preserveHistory, _ := strconv.ParseBool(r.URL.Query().Get("preserve_history"))

		result, err := svc.Delete(r.Context(), userID, mux.Vars(r)["id"], preserveHistory)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		go invalidateListCache(redisClient)

		message := "Property deleted successfully"
		if result.Mode == "soft" {
			message = "Property deactivated successfully"
		}
		respondSuccess(w, http.StatusOK, message, result)
	}
}
