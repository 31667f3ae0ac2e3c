package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	datahub "github.com/Lucartis/PrecisionAgriculture"
	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
	"github.com/Lucartis/PrecisionAgriculture/internal/interfaces"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter is the slice of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	log    *zap.Logger
}

func NewKafkaPublisher(cfg *datahub.Config, log *zap.Logger) interfaces.EventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &kafkaPublisher{writer: writer, log: log}
}

func (p *kafkaPublisher) PublishSensorData(ctx context.Context, data *models.SensorData) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal sensor data: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(data.SensorID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "message_id", Value: []byte(uuid.NewString())},
			{Key: "sensor_id", Value: []byte(data.SensorID)},
			{Key: "sensor_type", Value: []byte(data.SensorType)},
			{Key: "location", Value: []byte(data.Location)},
			{Key: "timestamp", Value: []byte(data.Timestamp.UTC().Format(time.RFC3339Nano))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish sensor data: %w", err)
	}

	p.log.Info("published sensor data",
		zap.String("sensor_type", data.SensorType),
		zap.String("sensor_id", data.SensorID),
		zap.String("location", data.Location))
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
