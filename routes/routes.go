package routes

import (
	"github.com/dcode-github/property_management_system/backend/controllers"
	"github.com/dcode-github/property_management_system/backend/middleware"
	"github.com/dcode-github/property_management_system/backend/services"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func Routes(router *mux.Router, client *mongo.Client, redisClient *redis.Client,
	propertySvc *services.PropertyService, adminSvc *services.AdminService) {

	// Auth routes
	router.HandleFunc("/register", controllers.RegisterUser(client)).Methods("POST")
	router.HandleFunc("/login", controllers.LoginUser(client)).Methods("POST")

	// Routes that require authentication
	authenticated := router.PathPrefix("/api").Subrouter()
	authenticated.Use(middleware.AuthMiddleware)

	// Property routes
	authenticated.HandleFunc("/properties", controllers.CreateProperty(propertySvc, redisClient)).Methods("POST")
	authenticated.HandleFunc("/properties", controllers.GetAllProperties(propertySvc, redisClient)).Methods("GET")
	authenticated.HandleFunc("/properties/{id}", controllers.GetProperty(propertySvc)).Methods("GET")
	authenticated.HandleFunc("/properties/{id}", controllers.UpdateProperty(propertySvc, redisClient)).Methods("PUT")
	authenticated.HandleFunc("/properties/{id}", controllers.DeleteProperty(propertySvc, redisClient)).Methods("DELETE")

	// Admin routes, always audited, never owner-scoped
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)

	admin.HandleFunc("/properties", controllers.AdminListProperties(adminSvc)).Methods("GET")
	admin.HandleFunc("/properties", controllers.AdminCreateProperty(adminSvc, redisClient)).Methods("POST")
	admin.HandleFunc("/properties/{id}", controllers.AdminGetProperty(adminSvc)).Methods("GET")
	admin.HandleFunc("/properties/{id}", controllers.AdminUpdateProperty(adminSvc, redisClient)).Methods("PUT")
	admin.HandleFunc("/properties/{id}", controllers.AdminDeleteProperty(adminSvc, redisClient)).Methods("DELETE")
	admin.HandleFunc("/properties/{id}/activate", controllers.AdminActivateProperty(adminSvc, redisClient)).Methods("PUT")
	admin.HandleFunc("/properties/{id}/deactivate", controllers.AdminDeactivateProperty(adminSvc, redisClient)).Methods("PUT")
}
