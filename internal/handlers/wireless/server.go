package wireless

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	datahub "github.com/Lucartis/PrecisionAgriculture"
	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
	"github.com/Lucartis/PrecisionAgriculture/internal/interfaces"
	"github.com/Lucartis/PrecisionAgriculture/internal/observability"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxLineBytes = 1 << 20

// sessionResponse is the per-line acknowledgement: the record re-encoded as
// wire readings plus the analysis outcome.
type sessionResponse struct {
	Sensors         []models.SensorReading `json:"sensors"`
	Timestamp       int64                  `json:"timestamp"`
	AnomalyDetected bool                   `json:"anomalyDetected"`
	Anomalies       []string               `json:"anomalies"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server accepts wireless clients and services each connection on its own
// goroutine, speaking newline-delimited JSON in both directions.
type Server struct {
	addr     string
	pipeline interfaces.SensorPipeline
	metrics  *observability.Metrics
	log      *zap.Logger

	listener net.Listener
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func NewServer(cfg *datahub.Config, pipeline interfaces.SensorPipeline, metrics *observability.Metrics, log *zap.Logger) *Server {
	return &Server{
		addr:     cfg.WirelessAddr,
		pipeline: pipeline,
		metrics:  metrics,
		log:      log,
		conns:    make(map[net.Conn]struct{}),
	}
}

func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bind wireless listener: %w", err)
	}
	s.listener = listener

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	s.log.Info("wireless session server listening",
		zap.String("addr", listener.Addr().String()))
	return nil
}

// Addr reports the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Stop closes the listener and interrupts blocked reads. Sessions finish
// their current read/process/respond cycle before exiting.
func (s *Server) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.SetReadDeadline(time.Now())
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("wireless session server stopped")
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				// Shutdown closed the listener; terminal, not an error.
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Error("failed to accept wireless connection", zap.Error(err))
			continue
		}

		s.track(conn)
		s.wg.Add(1)
		go s.handleSession(ctx, conn)
	}
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) handleSession(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	log := s.log.With(
		zap.String("session_id", uuid.NewString()),
		zap.String("remote", conn.RemoteAddr().String()))
	log.Info("📱 wireless client connected")

	s.metrics.ActiveSessions.Inc()
	defer s.metrics.ActiveSessions.Dec()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		data, ok := decodeLine(line)
		if !ok {
			// Malformed lines are dropped; the session continues.
			s.metrics.DroppedLines.Inc()
			log.Debug("dropped undecodable line")
			continue
		}

		log.Info("📥 received sensor data",
			zap.String("sensor_id", data.SensorID),
			zap.String("sensor_type", data.SensorType))
		s.metrics.RecordsProcessed.WithLabelValues("wireless").Inc()

		response := s.runPipeline(ctx, data, log)
		out, err := json.Marshal(response)
		if err != nil {
			log.Error("failed to encode response", zap.Error(err))
			continue
		}
		out = append(out, '\n')

		if _, err := conn.Write(out); err != nil {
			log.Warn("failed to write response, closing session", zap.Error(err))
			return
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case <-ctx.Done():
			// Shutdown interrupted the blocked read; normal close.
		default:
			log.Warn("wireless session read failed", zap.Error(err))
			return
		}
	}
	log.Info("wireless client disconnected")
}

func (s *Server) runPipeline(ctx context.Context, data *models.SensorData, log *zap.Logger) any {
	result, err := s.pipeline.Process(ctx, data)
	if err != nil {
		log.Error("pipeline failed",
			zap.Error(err),
			zap.String("sensor_id", data.SensorID))
		return errorResponse{Error: "internal server error"}
	}

	payload, err := ToWireFormat(data)
	if err != nil {
		// The record carried non-numeric values; acknowledge with an
		// empty reading list rather than fail a processed record.
		payload = &models.SensorPayload{
			Sensors:   []models.SensorReading{},
			Timestamp: data.Timestamp.UnixMilli(),
		}
	}

	anomalies := result.Analysis.Anomalies
	if anomalies == nil {
		anomalies = []string{}
	}
	return sessionResponse{
		Sensors:         payload.Sensors,
		Timestamp:       payload.Timestamp,
		AnomalyDetected: result.Analysis.IsAnomaly,
		Anomalies:       anomalies,
	}
}

// decodeLine tries the wire payload shape first; a line that decodes but
// carries no readings falls through to the canonical record shape kept for
// older field devices. Lines matching neither are dropped by the caller.
func decodeLine(line []byte) (*models.SensorData, bool) {
	var payload models.SensorPayload
	if err := json.Unmarshal(line, &payload); err == nil && len(payload.Sensors) > 0 {
		return FromWireFormat(&payload), true
	}

	var data models.SensorData
	if err := json.Unmarshal(line, &data); err == nil && data.Validate() == nil {
		return &data, true
	}

	return nil, false
}
