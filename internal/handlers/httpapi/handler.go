package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
	"github.com/Lucartis/PrecisionAgriculture/internal/interfaces"
	"github.com/Lucartis/PrecisionAgriculture/internal/observability"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	pipeline interfaces.SensorPipeline
	repo     interfaces.SensorRepository
	metrics  *observability.Metrics
	log      *zap.Logger
	started  time.Time
}

func NewHandler(
	pipeline interfaces.SensorPipeline,
	repo interfaces.SensorRepository,
	metrics *observability.Metrics,
	log *zap.Logger,
) *Handler {
	return &Handler{
		pipeline: pipeline,
		repo:     repo,
		metrics:  metrics,
		log:      log,
		started:  time.Now(),
	}
}

// ReceiveSensorData ingests one canonical record per call. Records missing
// identity fields are rejected before the pipeline runs.
func (h *Handler) ReceiveSensorData(w http.ResponseWriter, r *http.Request) {
	var data models.SensorData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid sensor data payload")
		return
	}
	if err := data.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Info("📥 received sensor data",
		zap.String("sensor_type", data.SensorType),
		zap.String("sensor_id", data.SensorID),
		zap.String("location", data.Location))
	h.metrics.RecordsProcessed.WithLabelValues("http").Inc()

	result, err := h.pipeline.Process(r.Context(), &data)
	if err != nil {
		h.log.Error("pipeline failed",
			zap.Error(err),
			zap.String("sensor_id", data.SensorID))
		writeError(w, http.StatusInternalServerError, "internal server error while processing sensor data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "sensor data received and processed successfully",
		"sensorId":        data.SensorID,
		"anomalyDetected": result.Analysis.IsAnomaly,
		"timestamp":       time.Now().UTC(),
	})
}

// History returns stored records for one sensor, newest first. The window
// defaults to the last 24 hours.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensorId"]

	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)
	var err error
	if raw := r.URL.Query().Get("end"); raw != "" {
		if end, err = time.Parse(time.RFC3339, raw); err != nil {
			writeError(w, http.StatusBadRequest, "end must be RFC 3339")
			return
		}
	}
	if raw := r.URL.Query().Get("start"); raw != "" {
		if start, err = time.Parse(time.RFC3339, raw); err != nil {
			writeError(w, http.StatusBadRequest, "start must be RFC 3339")
			return
		}
	}

	records, err := h.repo.FindBySensor(r.Context(), sensorID, start, end)
	if err != nil {
		h.log.Error("history query failed",
			zap.Error(err),
			zap.String("sensor_id", sensorID))
		writeError(w, http.StatusInternalServerError, "internal server error while reading sensor data")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "Agriculture Data Hub",
	})
}

func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "Data Hub is running",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
