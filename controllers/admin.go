package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/dcode-github/property_management_system/backend/services"
	"github.com/dcode-github/property_management_system/backend/utils"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func AdminListProperties(svc *services.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		includeInactive, _ := strconv.ParseBool(query.Get("include_inactive"))

		result, err := svc.List(r.Context(), services.AdminListQuery{
			PropertyType:    query.Get("property_type"),
			City:            query.Get("city"),
			Search:          query.Get("search"),
			IncludeInactive: includeInactive,
			Sort:            utils.ParseSort(query),
			Page:            utils.ParsePage(query),
		})
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, "Fetched properties", result)
	}
}

func AdminGetProperty(svc *services.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, "Fetched property", map[string]interface{}{"property": view})
	}
}

func AdminCreateProperty(svc *services.AdminService, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		input, uploads, err := decodeCreateRequest(r)
		if err != nil {
			log.Printf("Invalid admin create request: %v", err)
			respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request", nil)
			return
		}
		if err := input.Validate(); err != nil {
			respondServiceError(w, err)
			return
		}

		result, err := svc.Create(r.Context(), adminID, input, uploads)
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

func AdminUpdateProperty(svc *services.AdminService, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		patch, uploads, deleteRefs, err := decodeUpdateRequest(r)
		if err != nil {
			log.Printf("Invalid admin update request: %v", err)
			respondError(w, http.StatusBadRequest, "Invalid request body", "bad_request", nil)
			return
		}
		if err := patch.Validate(); err != nil {
			respondServiceError(w, err)
			return
		}

		result, err := svc.Update(r.Context(), adminID, mux.Vars(r)["id"], patch, uploads, deleteRefs)
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

func AdminDeleteProperty(svc *services.AdminService, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		preserveHistory, _ := strconv.ParseBool(r.URL.Query().Get("preserve_history"))

		result, err := svc.Delete(r.Context(), adminID, mux.Vars(r)["id"], preserveHistory)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		go invalidateListCache(redisClient)

		respondSuccess(w, http.StatusOK, "Property deleted successfully", result)
	}
}

func AdminActivateProperty(svc *services.AdminService, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		view, err := svc.Activate(r.Context(), adminID, mux.Vars(r)["id"])
		if err != nil {
			respondServiceError(w, err)
			return
		}

		go invalidateListCache(redisClient)

		respondSuccess(w, http.StatusOK, "Property activated successfully", map[string]interface{}{"property": view})
	}
}

func AdminDeactivateProperty(svc *services.AdminService, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		view, err := svc.Deactivate(r.Context(), adminID, mux.Vars(r)["id"])
		if err != nil {
			respondServiceError(w, err)
			return
		}

		go invalidateListCache(redisClient)

		respondSuccess(w, http.StatusOK, "Property deactivated successfully", map[string]interface{}{"property": view})
	}
}
