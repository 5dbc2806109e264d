package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dcode-github/property_management_system/backend/config"
	"github.com/dcode-github/property_management_system/backend/repository"
	"github.com/dcode-github/property_management_system/backend/routes"
	"github.com/dcode-github/property_management_system/backend/services"
	"github.com/dcode-github/property_management_system/backend/storage"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, err := config.ConnectDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatalf("Error closing MongoDB connection: %v", err)
		}
		log.Println("MongoDB connection closed")
	}()

	config.InitCollections(client, cfg.DBName)
	redisClient := config.InitRedis(cfg.RedisAddr, cfg.RedisPassword)

	imageStore, err := storage.NewDiskImageStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	properties := repository.NewProperties(config.PropertyCollection)
	audits := repository.NewAudits(config.AuditCollection)

	propertySvc := services.NewPropertyService(properties, imageStore)
	adminSvc := services.NewAdminService(properties, imageStore, audits)

	router := mux.NewRouter()
	routes.Routes(router, client, redisClient, propertySvc, adminSvc)

	// Stored image references resolve against this prefix.
	router.PathPrefix("/" + storage.Namespace + "/").Handler(
		http.StripPrefix("/"+storage.Namespace+"/", http.FileServer(http.Dir(cfg.UploadDir))))

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(router)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	signal.Notify(sigCh, os.Kill)
	<-sigCh

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Error during server shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
