package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/arr-heatmap/internal/model"
	"github.com/sells-group/arr-heatmap/internal/pipeline"
	"github.com/sells-group/arr-heatmap/pkg/sheets"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the map view bundle over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		fetch, err := newSheetFetch(ctx, cfg)
		if err != nil {
			// Start anyway: requests report the configuration problem, the
			// way the previous deployment did.
			fetchErr := err
			fetch = func(context.Context) ([]model.RawRow, error) { return nil, fetchErr }
		}

		router := buildRouter(p, fetch, cfg.Server.AllowedOrigins)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildRouter wires the HTTP surface. Concurrent /api/sheet requests are
// collapsed into one upstream fetch via singleflight; the pipeline itself
// is pure, so sharing one instance across requests needs no locking.
func buildRouter(p *pipeline.Pipeline, fetch sheetFetch, origins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var group singleflight.Group
	r.Get("/api/sheet", func(w http.ResponseWriter, req *http.Request) {
		result, err, _ := group.Do("sheet", func() (any, error) {
			raws, err := fetch(req.Context())
			if err != nil {
				return nil, err
			}
			return p.BuildView(raws), nil
		})
		if err != nil {
			status := http.StatusBadGateway
			msg := "failed to load sheet"
			if errors.Is(err, sheets.ErrMissingCredentials) {
				status = http.StatusInternalServerError
				msg = "missing credentials"
			}
			zap.L().Error("sheet fetch failed", zap.Error(err))
			writeJSON(w, status, map[string]string{
				"error":   msg,
				"details": err.Error(),
			})
			return
		}

		view := result.(pipeline.View)
		if n := len(view.Rejections); n > 0 {
			zap.L().Warn("rows rejected during normalization", zap.Int("rejected", n))
			for _, rej := range view.Rejections {
				zap.L().Debug("row rejected",
					zap.Int("row", rej.Row),
					zap.Strings("fields", rej.Fields),
					zap.String("reason", rej.Reason),
				)
			}
		}
		writeJSON(w, http.StatusOK, view)
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
