package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"madrasa-backend/internal/logger"
	"madrasa-backend/internal/security"
	"madrasa-backend/internal/service"
)

// Services holds everything the HTTP handlers depend on
type Services struct {
	Calculator    service.TarifCalculatorService
	Tarification  service.TarificationService
	Payment       service.PaymentService
	Statistics    service.StatisticsService
	Notifications service.NotificationService
}

// Server is the HTTP API server
type Server struct {
	httpServer *http.Server
	router     *mux.Router
}

// NewServer wires all routes and middleware
func NewServer(addr string, services *Services, tokens security.TokenManager) *Server {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(metricsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware(tokens))

	payments := &PaymentHandler{payment: services.Payment}
	api.HandleFunc("/familles/{familyId}/paiement", payments.GetDetails).Methods(http.MethodGet)
	api.HandleFunc("/familles/{familyId}/paiement/lignes", payments.AddLine).Methods(http.MethodPost)
	api.HandleFunc("/familles/{familyId}/paiement/lignes/{ligneId}", payments.ModifyLine).Methods(http.MethodPut)
	api.HandleFunc("/familles/{familyId}/paiement/lignes/{ligneId}", payments.DeleteLine).Methods(http.MethodDelete)

	tarification := &TarificationHandler{
		tarification: services.Tarification,
		calculator:   services.Calculator,
	}
	api.HandleFunc("/tarification", tarification.List).Methods(http.MethodGet)
	api.HandleFunc("/tarifs/calculer", tarification.Calculer).Methods(http.MethodPost)
	api.HandleFunc("/familles/{familyId}/tarifs", tarification.FamilyTarifs).Methods(http.MethodGet)
	api.HandleFunc("/cursus/{cursusId}/tarif", tarification.SetTarif).Methods(http.MethodPut)
	api.HandleFunc("/cursus/{cursusId}/reductions-familiales", tarification.CreateReductionFamiliale).Methods(http.MethodPost)
	api.HandleFunc("/reductions-familiales/{id}", tarification.UpdateReductionFamiliale).Methods(http.MethodPut)
	api.HandleFunc("/reductions-familiales/{id}", tarification.RemoveReductionFamiliale).Methods(http.MethodDelete)
	api.HandleFunc("/cursus/{cursusId}/reductions-multi-cursus", tarification.CreateReductionMultiCursus).Methods(http.MethodPost)
	api.HandleFunc("/reductions-multi-cursus/{id}", tarification.UpdateReductionMultiCursus).Methods(http.MethodPut)
	api.HandleFunc("/reductions-multi-cursus/{id}", tarification.RemoveReductionMultiCursus).Methods(http.MethodDelete)

	stats := &StatisticsHandler{statistics: services.Statistics}
	api.HandleFunc("/statistiques/paiements", stats.PaymentStats).Methods(http.MethodGet)
	api.HandleFunc("/statistiques/impayes", stats.UnpaidFamilies).Methods(http.MethodGet)
	api.HandleFunc("/statistiques/recherche", stats.SearchPayments).Methods(http.MethodGet)
	api.HandleFunc("/statistiques/revenus-mensuels", stats.RevenueByMonth).Methods(http.MethodGet)

	notifications := &NotificationHandler{notifications: services.Notifications}
	api.HandleFunc("/notifications", notifications.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/lu", notifications.MarkAsRead).Methods(http.MethodPut)

	return &Server{
		router: r,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until it is shut down
func (s *Server) Start() error {
	logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
