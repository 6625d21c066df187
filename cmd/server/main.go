package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/formcraft/formcraft/internal/api"
	"github.com/formcraft/formcraft/internal/config"
	"github.com/formcraft/formcraft/internal/middleware"
	"github.com/formcraft/formcraft/internal/services"
	"github.com/formcraft/formcraft/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("FORMCRAFT_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	commit := os.Getenv("FORMCRAFT_COMMIT")
	buildTime := os.Getenv("FORMCRAFT_BUILD_TIME")

	blob, err := openBlob(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer blob.Close()
	tracked := store.NewTracked(blob)

	forms := services.NewFormService(tracked)
	sessions := services.NewSessionService(forms)
	export := services.NewExportService(forms)
	summary := services.NewSummaryService(forms)
	signer := middleware.Signer([]byte(cfg.Auth.JWTSecret))
	auth := services.NewAuthService(services.AdminCredentials{
		Email:        cfg.Auth.AdminEmail,
		PasswordHash: cfg.Auth.AdminPasswordHash,
	}, services.TokenSigner(signer))

	// Another writer replacing the persisted blob triggers a full reload,
	// never a partial merge.
	stopWatch := tracked.Watch(cfg.Storage.WatchInterval, forms.ReplaceState)
	defer stopWatch()

	mux := http.NewServeMux()
	api.NewRouter(forms, sessions, export, summary, auth).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "FormCraft API",
			"commit":     commit,
			"build_time": buildTime,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     commit,
			"build_time": buildTime,
		})
	})

	// Serve the builder frontend when a static dir is configured.
	if cfg.Server.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	handler := middleware.SecureHeaders(
		middleware.NoStore(
			middleware.CORS(
				middleware.WithAuth([]byte(cfg.Auth.JWTSecret), mux))))

	log.Printf("formcraft server listening on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openBlob(cfg *config.Config) (store.Blob, error) {
	if cfg.Storage.Driver == "file" {
		return store.NewFileBlob(cfg.Storage.Path), nil
	}
	return store.OpenSQLite(cfg.Storage.Path, cfg.Storage.Key)
}
