package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalpages/ComicScannerApp-sub000/internal/model"
	"github.com/signalpages/ComicScannerApp-sub000/internal/pricing"
	"github.com/signalpages/ComicScannerApp-sub000/internal/store"
)

var servePort int

// maxRequestBody caps POST /v1/price payloads.
const maxRequestBody = 64 << 10

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the price estimation HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		env, err := initPricing(ctx, cfg, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		if cfg.Store.PruneIntervalSecs > 0 {
			go store.NewPruner(env.Store, time.Duration(cfg.Store.PruneIntervalSecs)*time.Second).Run(ctx)
		}

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(env.Pricer, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
			zap.L().Info("shutting down server")
		case err := <-errCh:
			if err != nil {
				return eris.Wrap(err, "serve: listen")
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// priceService is the part of the pricer the HTTP layer depends on.
type priceService interface {
	PriceComic(ctx context.Context, r pricing.Request) (*model.PriceEstimate, error)
}

// buildRouter creates the HTTP router with all routes registered.
func buildRouter(svc priceService, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/price", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query()
			handlePrice(w, req, svc, pricing.Request{
				Series: q.Get("series"),
				Issue:  q.Get("issue"),
				Year:   q.Get("year"),
			})
		})
		r.Post("/price", func(w http.ResponseWriter, req *http.Request) {
			var body pricing.Request
			if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBody)).Decode(&body); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			handlePrice(w, req, svc, body)
		})
	})

	return r
}

func handlePrice(w http.ResponseWriter, req *http.Request, svc priceService, body pricing.Request) {
	est, err := svc.PriceComic(req.Context(), body)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, est)
	case errors.Is(err, pricing.ErrMissingSeries):
		writeError(w, http.StatusBadRequest, "series is required")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		zap.L().Error("price comic", zap.String("series", body.Series), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
