package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/rohits-web03/meetdrop/internal/api"
	"github.com/rohits-web03/meetdrop/internal/config"
	"github.com/rohits-web03/meetdrop/internal/repositories"
)

// @title MeetDrop API
// @version 1.0
// @description Namespaced file storage for meetings: upload, serve, download, and delete files bucketed by meetingId.
// @BasePath /
func main() {
	cfg := config.Envs

	var store repositories.Store
	switch cfg.StorageBackend {
	case "r2":
		store = repositories.NewR2Store(
			cfg.R2.AccessKeyID,
			cfg.R2.SecretAccessKey,
			cfg.R2.AccountID,
			cfg.R2.BucketName,
			cfg.R2.Region,
			cfg.R2.PublicBaseURL,
		)
		log.Println("Using R2 storage backend, bucket:", cfg.R2.BucketName)
	default:
		diskStore, err := repositories.NewDiskStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Could not create upload directory %s: %v", cfg.UploadDir, err)
		}
		store = diskStore
		log.Println("Using disk storage backend, root:", cfg.UploadDir)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.SetupRouter(store),
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting MeetDrop server on port: %s", cfg.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on port %s: %v", cfg.Port, err)
	}
}
