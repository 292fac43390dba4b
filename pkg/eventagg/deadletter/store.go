// Package deadletter keeps messages that no listener handled.
//
// A Recorder plugs into eventagg.Config.OnZeroListeners and saves each
// unhandled message as an Entry in a Store:
//
//	store, _ := deadletter.NewSQLiteStore("./deadletter.db")
//	rec := deadletter.NewRecorder(store)
//	agg := eventagg.NewAggregator(&eventagg.Config{OnZeroListeners: rec.Record})
//
// Entries are diagnostic records; nothing is redelivered automatically.
package deadletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Store persists dead-letter entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores an entry. Entries with an existing ID are replaced.
	Save(ctx context.Context, e *Entry) error

	// Get retrieves an entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	Get(ctx context.Context, id string) (*Entry, error)

	// List returns up to limit entries, oldest first. A limit of zero or
	// less returns every entry.
	List(ctx context.Context, limit int) ([]*Entry, error)

	// Delete removes an entry. Returns nil if it doesn't exist.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates an entry doesn't exist.
	ErrNotFound = errors.New("dead letter not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("dead letter store closed")
)

// Entry is one unhandled message.
type Entry struct {
	ID          string    `json:"id"`
	MessageType string    `json:"message_type"`
	Payload     []byte    `json:"payload"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// NewEntry captures msg as JSON. Messages that cannot be encoded are
// stored with a null payload, so the type is still recorded.
func NewEntry(msg any) (*Entry, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return &Entry{
			ID:          uuid.NewString(),
			MessageType: messageType(msg),
			Payload:     []byte("null"),
			RecordedAt:  time.Now().UTC(),
		}, fmt.Errorf("encode %s: %w", messageType(msg), err)
	}
	return &Entry{
		ID:          uuid.NewString(),
		MessageType: messageType(msg),
		Payload:     payload,
		RecordedAt:  time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (e *Entry) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s: %w", e.MessageType, err)
	}
	return nil
}

func messageType(msg any) string {
	if msg == nil {
		return "<nil>"
	}
	return reflect.TypeOf(msg).String()
}
