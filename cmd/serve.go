package main

import (
	"encoding/json"
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

	"github.com/sells-group/msp-research-cli/internal/identity"
	"github.com/sells-group/msp-research-cli/internal/model"
	"github.com/sells-group/msp-research-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the loaded research data over a read-only API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "serve: init store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "serve: migrate")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newAPIRouter(st),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}

		return nil
	},
}

// newAPIRouter builds the read-only API. Company keys in paths are
// canonicalized before lookup, so any spelling of a loaded name
// resolves to the same record.
func newAPIRouter(st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/companies", func(w http.ResponseWriter, req *http.Request) {
		companies, err := st.ListCompanies(req.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if companies == nil {
			companies = []model.Company{}
		}
		writeJSON(w, http.StatusOK, companies)
	})

	r.Get("/api/companies/{key}", func(w http.ResponseWriter, req *http.Request) {
		company, err := lookupCompany(req, st)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if company == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "company not found"})
			return
		}
		writeJSON(w, http.StatusOK, company)
	})

	r.Get("/api/companies/{key}/people", func(w http.ResponseWriter, req *http.Request) {
		company, err := lookupCompany(req, st)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if company == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "company not found"})
			return
		}
		people, err := st.ListPeople(req.Context(), company.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if people == nil {
			people = []model.Person{}
		}
		writeJSON(w, http.StatusOK, people)
	})

	return r
}

func lookupCompany(req *http.Request, st store.Store) (*model.Company, error) {
	key := identity.Canonicalize(chi.URLParam(req, "key"))
	return st.GetCompany(req.Context(), key)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	zap.L().Error("serve: request failed", zap.Error(err))
	writeJSON(w, status, map[string]string{"error": "internal error"})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
