package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/voxlate/voxlate-hub/internal/events"
)

// NATSService handles NATS messaging for the Voxlate system
type NATSService struct {
	conn *nats.Conn
	url  string
}

// NATS subjects for translation lifecycle events
const (
	SubjectTranslationsCompleted = "voxlate.translations.completed"
	SubjectTranslationsFailed    = "voxlate.translations.failed"
	SubjectSystemEvents          = "voxlate.system.events"
)

// NewNATSService creates a new NATS service instance
func NewNATSService(natsURL string) (*NATSService, error) {
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	return &NATSService{
		url: natsURL,
	}, nil
}

// Connect establishes connection to NATS server
func (ns *NATSService) Connect() error {
	log.Printf("🔌 Connecting to NATS at %s", ns.url)

	// Connection options with retry logic
	opts := []nats.Option{
		nats.Name("voxlate-hub"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1), // Retry indefinitely
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("⚠️  NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("🔄 NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Println("🔌 NATS connection closed")
		}),
	}

	conn, err := nats.Connect(ns.url, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	ns.conn = conn
	log.Printf("✅ Connected to NATS server at %s", conn.ConnectedUrl())
	return nil
}

// PublishTranslation publishes a translation event to the completed or
// failed subject depending on its outcome.
func (ns *NATSService) PublishTranslation(event *events.TranslationEvent) error {
	if ns.conn == nil {
		return fmt.Errorf("NATS connection not established")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal translation event: %w", err)
	}

	subject := SubjectTranslationsCompleted
	if !event.Success {
		subject = SubjectTranslationsFailed
	}

	if err := ns.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	log.Printf("📤 Published translation event to NATS - Pair: %s->%s, Success: %t",
		event.SourceLang, event.TargetLang, event.Success)
	return nil
}

// SubscribeToTranslations subscribes to all translation lifecycle events
func (ns *NATSService) SubscribeToTranslations(handler func(*events.TranslationEvent)) (*nats.Subscription, error) {
	if ns.conn == nil {
		return nil, fmt.Errorf("NATS connection not established")
	}

	return ns.conn.Subscribe("voxlate.translations.>", func(msg *nats.Msg) {
		var event events.TranslationEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("❌ Error unmarshaling translation event: %v", err)
			return
		}

		log.Printf("📥 Received translation event from NATS - Pair: %s->%s, Stage: %s",
			event.SourceLang, event.TargetLang, event.Stage)
		handler(&event)
	})
}

// Close closes the NATS connection
func (ns *NATSService) Close() {
	if ns.conn != nil {
		ns.conn.Close()
		log.Println("🔌 NATS connection closed")
	}
}

// IsConnected returns true if connected to NATS
func (ns *NATSService) IsConnected() bool {
	return ns.conn != nil && ns.conn.IsConnected()
}

// GetStats returns connection statistics
func (ns *NATSService) GetStats() nats.Statistics {
	if ns.conn != nil {
		return ns.conn.Stats()
	}
	return nats.Statistics{}
}
