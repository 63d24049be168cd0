package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"jersey-bot/internal/util"
)

const liveness = "Jersey Bot is running!"

// Exporter renders the order CSV served by the export endpoint.
type Exporter interface {
	ExportOrdersCSV(ctx context.Context) ([]byte, error)
}

// New builds the HTTP server: liveness on / and /healthz, and the
// token-protected CSV export.
func New(addr, exportSecret string, exp Exporter, log *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Handler(exportSecret, exp, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func Handler(exportSecret string, exp Exporter, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	mux := http.NewServeMux()

	alive := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(liveness))
	}
	mux.HandleFunc("GET /{$}", alive)
	mux.HandleFunc("GET /healthz", alive)

	// CSV export (admin-only link with token = HMAC)
	mux.HandleFunc("GET /export/orders.csv", func(w http.ResponseWriter, r *http.Request) {
		if !util.ValidExportToken(exportSecret, r.URL.Query().Get("token")) {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
		data, err := exp.ExportOrdersCSV(r.Context())
		if err != nil {
			log.Error("export orders", "error", err)
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
		_, _ = w.Write(data)
	})

	return mux
}

// ExportURL is the admin download link for the CSV export.
func ExportURL(base, exportSecret string) string {
	return base + "/export/orders.csv?token=" + util.ExportToken(exportSecret)
}
