package main

import (
	"log"

	_ "github.com/dhima/edge-cache/docs" // Import generated docs
	"github.com/dhima/edge-cache/internal/api"
)

// @title Edge Cache API
// @version 1.0
// @description Edge cache service: a schema-validated document cache over SQLite, MySQL or in-memory stores, with live queries streamed as server-sent events and an in-memory diagnostic log buffer.
// @description
// @description ## Features
// @description - **App config cache**: save, list and delete app configs; malformed records are skipped and logged
// @description - **Live observers**: registered live queries publish full result sets on `/api/v1/events/stream` and, when configured, to Kafka
// @description - **Diagnostic logs**: bounded in-memory log buffer with text export and scheduled file export
// @description
// @description The store is opened explicitly with `POST /api/v1/store/initialize`.

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	srv := api.NewServer()
	if err := srv.Serve(); err != nil {
		log.Fatalf("api server stopped: %v", err)
	}
}
