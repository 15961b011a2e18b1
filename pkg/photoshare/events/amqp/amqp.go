package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/mediastash/photoshare/pkg/photoshare"
)

const (
	// Exchange is the durable direct exchange every photo share event
	// goes through
	Exchange = "photos.events"

	RoutingPhotoCreated = "photo.created"
	RoutingPhotoDeleted = "photo.deleted"
	RoutingCommentAdded = "comment.added"
)

// Sink publishes service events to RabbitMQ. The service treats sink
// failures as non-fatal, so a broker outage costs events, not uploads.
type Sink struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	publishMu sync.Mutex
}

// New dials the broker and declares the exchange
func New(url string) (*Sink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Sink{conn: conn, channel: ch}, nil
}

// Close releases the channel and connection
func (s *Sink) Close() {
	if s == nil {
		return
	}
	if s.channel != nil {
		_ = s.channel.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

type photoEvent struct {
	PhotoID  int64  `json:"photo_id"`
	Title    string `json:"title,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type commentEvent struct {
	CommentID int64 `json:"comment_id"`
	PhotoID   int64 `json:"photo_id"`
}

// PhotoCreated publishes a photo.created event
func (s *Sink) PhotoCreated(ctx context.Context, photo *photoshare.Photo) error {
	return s.publish(ctx, RoutingPhotoCreated, photoEvent{
		PhotoID:  photo.ID,
		Title:    photo.Title,
		ImageURL: photo.ImageURL,
	})
}

// PhotoDeleted publishes a photo.deleted event
func (s *Sink) PhotoDeleted(ctx context.Context, photoID int64) error {
	return s.publish(ctx, RoutingPhotoDeleted, photoEvent{PhotoID: photoID})
}

// CommentAdded publishes a comment.added event
func (s *Sink) CommentAdded(ctx context.Context, comment *photoshare.Comment) error {
	return s.publish(ctx, RoutingCommentAdded, commentEvent{
		CommentID: comment.ID,
		PhotoID:   comment.PhotoID,
	})
}

func (s *Sink) publish(ctx context.Context, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Channels are not safe for concurrent publish.
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	return s.channel.PublishWithContext(
		ctx,
		Exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}
