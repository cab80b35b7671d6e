// Worker consumes telemetry events from Kafka and writes them to structured
// logs. Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, and KAFKA_GROUP_ID.
package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"shopfront-backend/internal/config"
	"shopfront-backend/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}

	topic := cfg.TelemetryKafkaTopic
	if topic == "" {
		topic = "shopfront-telemetry"
	}
	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = "shopfront-telemetry-worker"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s)", topic, groupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		var event telemetry.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Warn("malformed telemetry event", "error", err, "offset", msg.Offset)
			continue
		}
		logger.Info("telemetry event",
			"event_type", event.EventType,
			"user_id", event.UserID,
			"source", event.Source,
			"metadata", event.Metadata,
			"created_at", event.CreatedAt,
		)
	}
}
