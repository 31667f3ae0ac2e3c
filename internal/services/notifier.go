package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	datahub "github.com/Lucartis/PrecisionAgriculture"
	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
	"github.com/Lucartis/PrecisionAgriculture/internal/interfaces"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// telegramSender is the slice of tele.Bot the notifier needs.
type telegramSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type telegramNotifier struct {
	bot  telegramSender
	chat tele.Recipient
	log  *zap.Logger
}

// NewTelegramNotifier builds the alert sink. Without a configured token the
// notifier degrades to log-only so the pipeline still runs in development.
func NewTelegramNotifier(cfg *datahub.Config, log *zap.Logger) (interfaces.AlertNotifier, error) {
	if cfg.TgToken == "" || cfg.TgChatID == "" {
		log.Warn("TG_TOKEN or TG_CHAT_ID not set, anomaly alerts will only be logged")
		return &telegramNotifier{log: log}, nil
	}

	chatID, err := strconv.ParseInt(cfg.TgChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse TG_CHAT_ID: %w", err)
	}

	pref := tele.Settings{
		Token:     cfg.TgToken,
		ParseMode: tele.ModeHTML,
	}
	bot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &telegramNotifier{
		bot:  bot,
		chat: &tele.Chat{ID: chatID},
		log:  log,
	}, nil
}

func (n *telegramNotifier) SendAnomalyAlert(_ context.Context, analysis *models.AnalysisResult) error {
	n.log.Info("🚨 sending anomaly alert",
		zap.String("sensor_type", analysis.SensorType),
		zap.String("sensor_id", analysis.SensorID),
		zap.String("severity", analysis.Severity()))

	if n.bot == nil || n.chat == nil {
		return nil
	}

	if _, err := n.bot.Send(n.chat, formatAlert(analysis)); err != nil {
		return fmt.Errorf("send anomaly alert: %w", err)
	}
	return nil
}

func formatAlert(analysis *models.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 <b>Anomaly detected</b>\n\n")
	fmt.Fprintf(&b, "Sensor: <b>%s</b> (%s)\n", analysis.SensorID, analysis.SensorType)
	fmt.Fprintf(&b, "Severity: <b>%s</b>\n", analysis.Severity())
	fmt.Fprintf(&b, "Time: %s\n\n", analysis.Timestamp.UTC().Format(time.RFC3339))
	for _, description := range analysis.Anomalies {
		fmt.Fprintf(&b, "• %s\n", description)
	}
	return b.String()
}
