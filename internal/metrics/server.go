package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mr-Niloy/ColdKeys/internal/core/keymap"
)

// Status is the live state served on /status.
type Status struct {
	Session string `json:"session"`
	Profile string `json:"profile"`
	Mapped  int    `json:"mapped_keys"`
}

type StatusFunc func() Status

type deviceView struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Phys    string `json:"phys,omitempty"`
	Vendor  string `json:"vendor"`
	Product string `json:"product"`
}

// NewRouter serves /metrics, /healthz, /status and /devices.
func NewRouter(c *Collector, status StatusFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(c.Registry(), promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status())
	})
	r.Get("/devices", func(w http.ResponseWriter, _ *http.Request) {
		devices := c.Devices()
		views := make([]deviceView, 0, len(devices))
		for _, dev := range devices {
			views = append(views, deviceView{
				Path:    dev.Path,
				Name:    dev.Name,
				Phys:    dev.Phys,
				Vendor:  fmt.Sprintf("%04x", dev.ID.Vendor),
				Product: fmt.Sprintf("%04x", dev.ID.Product),
			})
		}
		writeJSON(w, views)
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Serve runs the status server until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger keymap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Status server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("status server shutdown: %w", err)
		}
		return nil
	}
}
