package handlers

import (
	"net/http"
	"strings"
	"time"

	"budget/internal/config"
	"budget/internal/db"
	"budget/internal/logging"
	"budget/internal/middleware"
	"budget/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	authn        middleware.Authenticator
	users        UserStore
	scopes       ScopeStore
	transactions TransactionStore
	bills        BillStore
	settings     SettingsStore
	txService    TransactionService
	billService  BillService
	seeder       Seeder
	hub          *websocket.Hub
	logger       *logging.Logger
	loc          *time.Location
	now          func() time.Time
}

func New(txRunner db.TxRunner, cfg config.Config, stores Stores, svc Services, hub *websocket.Hub, logger *logging.Logger) *Handler {
	if hub == nil {
		hub = websocket.NewHub()
	}
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		authn:        middleware.Authenticator{Secret: cfg.JWTSecret, AllowLegacy: cfg.AllowLegacyTokens},
		users:        stores.Users,
		scopes:       stores.Scopes,
		transactions: stores.Transactions,
		bills:        stores.Bills,
		settings:     stores.Settings,
		txService:    svc.Transactions,
		billService:  svc.Bills,
		seeder:       svc.Seeder,
		hub:          hub,
		logger:       logger.WithComponent(logging.ComponentHTTP),
		loc:          time.Local,
		now:          time.Now,
	}
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(logging.RequestLogger(h.logger))
	router.Use(chimiddleware.Recoverer)
	origins := allowedOrigins(h.cfg.AllowedOrigins)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: len(origins) != 1 || origins[0] != "*",
		MaxAge:           300,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/ws", h.WS)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(middleware.Auth(h.authn)).Get("/me", h.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(h.authn))

			r.Get("/scopes", h.ListScopes)
			r.Post("/scopes", h.CreateScope)
			r.Put("/scopes/{id}", h.UpdateScope)
			r.Delete("/scopes/{id}", h.DeleteScope)

			r.Get("/transactions", h.ListTransactions)
			r.Post("/transactions", h.CreateTransaction)
			r.Put("/transactions/{id}", h.UpdateTransaction)
			r.Delete("/transactions/{id}", h.DeleteTransaction)

			r.Get("/bills", h.ListBills)
			r.Post("/bills", h.CreateBill)
			r.Put("/bills/{id}", h.UpdateBill)
			r.Delete("/bills/{id}", h.DeleteBill)

			r.Get("/user-settings", h.GetSettings)
			r.Put("/user-settings", h.UpdateSettings)

			r.Get("/export", h.Export)
		})
	})
	return router
}
