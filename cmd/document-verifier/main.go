package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/documentverification/internal/gcp"
	"github.com/Lllllllleong/documentverification/internal/server"
	"github.com/Lllllllleong/documentverification/internal/services"
)

const entryPoint = "HandleDocuments"

var (
	router  http.Handler
	once    sync.Once
	initErr error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// All upload and verify routes are served by one HTTP function.
	functions.HTTP(entryPoint, handleDocuments)
}

// main serves the function locally; Cloud Functions ignores it.
func main() {
	// Route every path to the function rather than /HandleDocuments only.
	if os.Getenv("FUNCTION_TARGET") == "" {
		os.Setenv("FUNCTION_TARGET", entryPoint)
	}

	port := gcp.GetEnv("PORT", "8080")
	if err := funcframework.Start(port); err != nil {
		slog.Error("Function framework exited", "error", err)
		os.Exit(1)
	}
}

func handleDocuments(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		verifier, err := services.NewVerifier(context.Background())
		if err != nil {
			initErr = err
			return
		}
		router = server.NewRouter(verifier, gcp.GetEnvList("ALLOWED_ORIGINS", "*"))
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	router.ServeHTTP(w, r)
}
