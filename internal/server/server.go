package server

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/simonvc/bookkeeper/internal/bookkeeping"
	"github.com/simonvc/bookkeeper/internal/store"
)

// Server exposes the books over HTTP. Plain CRUD goes to the store; posting,
// period transitions and reports go through the bookkeeping service.
type Server struct {
	store  *store.Store
	books  *bookkeeping.Service
	log    *zap.Logger
	router chi.Router
	addr   string
}

func New(st *store.Store, books *bookkeeping.Service, log *zap.Logger, addr string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	s := &Server{store: st, books: books, log: log, router: r, addr: addr}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/chart", s.getChart)

		r.Post("/companies", s.createCompany)
		r.Get("/companies", s.listCompanies)

		r.Route("/companies/{cid}", func(r chi.Router) {
			r.Use(s.withCompany)
			r.Get("/", s.getCompany)

			// Accounts
			r.Post("/accounts", s.createAccount)
			r.Get("/accounts", s.listAccounts)
			r.Get("/accounts/{id}", s.getAccount)
			r.Patch("/accounts/{id}", s.updateAccount)
			r.Delete("/accounts/{id}", s.deleteAccount)
			r.Post("/accounts/{id}/sub-accounts", s.createSubAccount)
			r.Get("/accounts/{id}/sub-accounts", s.listSubAccounts)

			// Partners
			r.Post("/partners", s.createPartner)
			r.Get("/partners", s.listPartners)

			// Tax types
			r.Post("/tax-types", s.createTaxType)
			r.Get("/tax-types", s.listTaxTypes)
			r.Put("/tax-types/{id}", s.updateTaxType)
			r.Delete("/tax-types/{id}", s.deleteTaxType)

			// Fiscal periods
			r.Post("/periods", s.createPeriod)
			r.Get("/periods", s.listPeriods)
			r.Put("/periods/{id}", s.updatePeriod)
			r.Delete("/periods/{id}", s.deletePeriod)
			r.Post("/periods/{id}/close", s.closePeriod)
			r.Post("/periods/{id}/reopen", s.reopenPeriod)

			// Journals
			r.Post("/journals", s.createJournal)
			r.Get("/journals", s.listJournals)
			r.Get("/journals/{id}", s.getJournal)
			r.Put("/journals/{id}", s.replaceJournal)
			r.Delete("/journals/{id}", s.deleteJournal)

			// Reports
			r.Get("/reports/general-ledger", s.generalLedger)
			r.Get("/reports/trial-balance", s.trialBalance)
			r.Get("/reports/profit-loss", s.profitLoss)
			r.Get("/reports/balance-sheet", s.balanceSheet)
		})
	})

	return s
}

// requestLogger writes one line per request once the handler has finished.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.Int("status", ww.Status()),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.String("ip", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Duration("cost", time.Since(start)),
			)
		})
	}
}

func (s *Server) ListenAndServe() error {
	s.log.Info("bookkeeper server listening", zap.String("addr", s.addr))
	return http.ListenAndServe(s.addr, s.router)
}

func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("bookkeeper server listening", zap.String("addr", ln.Addr().String()))
	return http.Serve(ln, s.router)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
