package services

import (
	"context"
	"fmt"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Notification rows are written synchronously; delivery (email, push, digest
// batching) happens downstream off a JetStream subject. Publishing is
// best-effort from the caller's perspective.

type NotificationPublisherInterface interface {
	Publish(ctx context.Context, subject string, payload []byte) error
}

type NatsService struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

func GetNatsClient() (*nats.Conn, error) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		return nil, fmt.Errorf("NATS_URL environment variable is required")
	}
	return nats.Connect(url)
}

func NewNatsService(ctx context.Context, conn *nats.Conn) (*NatsService, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamName := os.Getenv("NATS_NOTIFICATIONS_STREAM_NAME")
	subjectPrefix := os.Getenv("NATS_NOTIFICATIONS_SUBJECT_PREFIX")

	_, err = js.Stream(ctx, streamName)
	if err != nil {
		fmt.Printf("Stream %s does not exist, creating it...\n", streamName)

		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     streamName,
			Subjects: []string{subjectPrefix + ".>"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	return &NatsService{
		conn: conn,
		js:   js,
	}, nil
}

func (s *NatsService) Publish(ctx context.Context, subject string, payload []byte) error {
	_, err := s.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

func (s *NatsService) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}
