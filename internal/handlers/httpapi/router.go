package httpapi

import (
	"net/http"

	"github.com/Lucartis/PrecisionAgriculture/internal/observability"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(handler *Handler, metrics *observability.Metrics) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/sensordata").Subrouter()
	api.HandleFunc("", handler.ReceiveSensorData).Methods(http.MethodPost)
	api.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/stats", handler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/{sensorId}", handler.History).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})).
		Methods(http.MethodGet)

	return router
}
