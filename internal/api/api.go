package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/susu3304/partypay/internal/config"
	"github.com/susu3304/partypay/internal/i18n"
	"github.com/susu3304/partypay/internal/session"
)

type API struct {
	router      *mux.Router
	sessions    *session.Manager
	config      *config.Config
	logger      *zap.Logger
	jwtSecret   []byte
	defaultLang language.Tag
}

func New(cfg *config.Config, sessions *session.Manager, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := &API{
		router:      mux.NewRouter(),
		sessions:    sessions,
		config:      cfg,
		logger:      logger,
		jwtSecret:   []byte(cfg.JWTSecret),
		defaultLang: i18n.Parse(cfg.DefaultLanguage),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	// Public endpoints
	a.router.HandleFunc("/api/sessions", a.handleCreateSession).Methods("POST")
	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Session endpoints, authorized by the token issued at creation
	protected := a.router.PathPrefix("/api/session").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("", a.handleGetSession).Methods("GET")
	protected.HandleFunc("", a.handleDeleteSession).Methods("DELETE")
	protected.HandleFunc("/language", a.handleSetLanguage).Methods("POST")

	protected.HandleFunc("/participants", a.handleAddParticipant).Methods("POST")
	protected.HandleFunc("/participants/{name}", a.handleRemoveParticipant).Methods("DELETE")
	protected.HandleFunc("/expenses", a.handleAddExpense).Methods("POST")
	protected.HandleFunc("/expenses/{index:[0-9]+}", a.handleRemoveExpense).Methods("DELETE")
	protected.HandleFunc("/payers", a.handleAddPayer).Methods("POST")
	protected.HandleFunc("/payers/{index:[0-9]+}", a.handleRemovePayer).Methods("DELETE")

	protected.HandleFunc("/wizard/next", a.handleNext).Methods("POST")
	protected.HandleFunc("/wizard/previous", a.handlePrevious).Methods("POST")
	protected.HandleFunc("/wizard/goto/{step:[0-9]+}", a.handleGoTo).Methods("POST")

	protected.HandleFunc("/calculate", a.handleCalculate).Methods("POST")
	protected.HandleFunc("/export/{action}", a.handleExport).Methods("POST")
}

// Handler is the router wrapped with CORS.
func (a *API) Handler() http.Handler {
	// Note: When AllowedOrigins is "*", AllowCredentials must be false for security
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Notice", "X-Export-Fallback"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

// Start serves until ctx is done.
func (a *API) Start(ctx context.Context) error {
	srv := &http.Server{Addr: a.config.WebBind, Handler: a.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("API server listening", zap.String("addr", "http://"+a.config.WebBind))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
