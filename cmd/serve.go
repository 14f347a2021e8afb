package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hollis-labs/contacts-cli/internal/model"
	"github.com/hollis-labs/contacts-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve merge run history over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		mux := http.NewServeMux()

		mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		mux.HandleFunc("GET /runs", func(w http.ResponseWriter, r *http.Request) {
			filter := store.RunFilter{
				Status: model.RunStatus(r.URL.Query().Get("status")),
				Limit:  50,
			}
			if limit := r.URL.Query().Get("limit"); limit != "" {
				n, err := strconv.Atoi(limit)
				if err != nil || n < 1 {
					http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
					return
				}
				filter.Limit = n
			}

			runs, err := st.ListRuns(r.Context(), filter)
			if err != nil {
				zap.L().Error("serve: list runs", zap.Error(err))
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, runs)
		})

		mux.HandleFunc("GET /runs/{id}", func(w http.ResponseWriter, r *http.Request) {
			run, err := st.GetRun(r.Context(), r.PathValue("id"))
			if err != nil {
				http.Error(w, `{"error":"run not found"}`, http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
