package api

import (
	"fmt"
	"net/http"

	_ "github.com/rohits-web03/meetdrop/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rohits-web03/meetdrop/internal/api/handlers"
	"github.com/rohits-web03/meetdrop/internal/api/middleware"
	"github.com/rohits-web03/meetdrop/internal/config"
	"github.com/rohits-web03/meetdrop/internal/repositories"
	"github.com/rs/cors"
)

// SetupRouter wires the file endpoints over the given store.
func SetupRouter(store repositories.Store) http.Handler {
	mux := http.NewServeMux()
	c := cors.New(config.Envs.CorsConfig)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	fileHandler := handlers.NewFileHandler(store)

	mux.HandleFunc("POST /api/upload", fileHandler.UploadFile)
	mux.HandleFunc("GET /api/download/{meetingId}/{filename}", fileHandler.DownloadFile)
	mux.HandleFunc("DELETE /api/files/{meetingId}/{filename}", fileHandler.DeleteFile)
	mux.HandleFunc("DELETE /api/meeting-files/{meetingId}", fileHandler.DeleteMeetingFiles)

	// Public static serving of stored files by their exact meeting/name pair.
	mux.HandleFunc("GET /uploads/{meetingId}/{file}", fileHandler.ServeUpload)

	handler := c.Handler(mux)
	handler = middleware.Logger(handler)
	return handler
}
