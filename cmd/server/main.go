package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/askwell/askwell/internal/api"
	"github.com/askwell/askwell/internal/db"
	"github.com/askwell/askwell/internal/middleware"
	"github.com/askwell/askwell/internal/utils"
)

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	addr := utils.SafeEnv("ASKWELL_ADDR", ":8080")

	var store api.Store
	if path := os.Getenv("ASKWELL_DB_PATH"); path != "" {
		sqliteStore, err := db.Open(path)
		if err != nil {
			log.Fatalf("open database %q: %v", path, err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		log.Printf("using sqlite store at %s", path)
	} else {
		store = api.NewMemoryStore()
		log.Printf("using in-memory store (set ASKWELL_DB_PATH to persist)")
	}

	if seed := os.Getenv("ASKWELL_SEED"); seed == "1" || seed == "true" {
		if err := api.SeedDemoData(store); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
		log.Printf("demo accounts and sample questions seeded")
	}

	mux := http.NewServeMux()
	api.NewRouter(store).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":   true,
			"name": "AskWell API",
		})
	})

	// Static frontend if ASKWELL_STATIC_DIR is set (fullstack image).
	if staticDir := os.Getenv("ASKWELL_STATIC_DIR"); staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	handler := middleware.CORS(middleware.SecureHeaders(middleware.WithAuth(mux)))

	log.Printf("AskWell server listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
