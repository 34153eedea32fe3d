package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adigiz/leadgen/internal/model"
	"github.com/adigiz/leadgen/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger server for scrape runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		// Runs triggered over HTTP outlive the request; they stop only on
		// server shutdown.
		runner := func(target model.SearchTarget, categoryID string) {
			if _, err := runScrape(ctx, e, target, categoryID, ""); err != nil {
				zap.L().Error("triggered run failed",
					zap.String("target", target.String()),
					zap.String("category_id", categoryID),
					zap.Error(err),
				)
			}
		}

		r := newRouter(e.Store, runner)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// scrapeRequest is the trigger payload. Either location_id or both lat and
// lng are required, plus a category_id that resolves to a stored category.
type scrapeRequest struct {
	LocationID string   `json:"location_id"`
	CategoryID string   `json:"category_id"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Zoom       int      `json:"zoom"`
}

// newRouter builds the trigger routes. The runner is invoked on a separate
// goroutine per accepted request; there is no job id or completion channel.
func newRouter(st store.Store, runner func(target model.SearchTarget, categoryID string)) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/v1/scrape", func(w http.ResponseWriter, req *http.Request) {
		var body scrapeRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.CategoryID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category_id is required"})
			return
		}
		if body.LocationID == "" && (body.Lat == nil || body.Lng == nil) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "either location_id or lat and lng are required"})
			return
		}

		category, err := st.GetCategory(req.Context(), body.CategoryID)
		if err != nil {
			zap.L().Error("trigger: category lookup failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "category lookup failed"})
			return
		}
		if category == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown category"})
			return
		}

		var target model.SearchTarget
		if body.LocationID != "" {
			target = model.KnownLocation(body.LocationID)
		} else {
			zoom := body.Zoom
			if zoom == 0 {
				zoom = 14
			}
			target = model.Coordinates(*body.Lat, *body.Lng, zoom)
		}

		go runner(target, body.CategoryID)

		writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
