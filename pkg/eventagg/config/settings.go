package config

import (
	"errors"
	"fmt"
)

// Ownership names.
const (
	OwnershipWeak   = "weak"
	OwnershipStrong = "strong"
)

// Marshaller names.
const (
	MarshallerInline    = "inline"
	MarshallerGoroutine = "goroutine"
	MarshallerLimited   = "limited"
)

// Dead-letter drivers. An empty driver disables the dead-letter store.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// ErrInvalidSettings is wrapped by every validation failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the file representation of aggregator policy.
type Settings struct {
	// Ownership is the default listener ownership: weak or strong.
	Ownership string

	// MessageInheritance enables interface matching on runtime types.
	MessageInheritance bool

	// Marshaller and AsyncMarshaller name the default marshallers.
	Marshaller      string
	AsyncMarshaller string

	// MaxConcurrency bounds the "limited" marshaller.
	MaxConcurrency int

	Metrics bool
	Tracing bool

	DeadLetter DeadLetter
}

// DeadLetter configures where unhandled messages are kept.
type DeadLetter struct {
	Driver     string
	Path       string
	MaxEntries int
}

// Default returns settings that match the aggregator's built-in defaults.
func Default() Settings {
	return Settings{
		Ownership:       OwnershipWeak,
		Marshaller:      MarshallerInline,
		AsyncMarshaller: MarshallerInline,
		MaxConcurrency:  8,
		DeadLetter: DeadLetter{
			MaxEntries: 10000,
		},
	}
}

// New extracts Settings from a decoded document. Missing keys keep their
// Default values.
func New(data map[string]any) Settings {
	v := values(data)
	def := Default()

	dl := v.Section("dead_letter")
	return Settings{
		Ownership:          v.String("ownership", def.Ownership),
		MessageInheritance: v.Bool("message_inheritance", def.MessageInheritance),
		Marshaller:         v.String("marshaller", def.Marshaller),
		AsyncMarshaller:    v.String("async_marshaller", def.AsyncMarshaller),
		MaxConcurrency:     v.Int("max_concurrency", def.MaxConcurrency),
		Metrics:            v.Bool("metrics", def.Metrics),
		Tracing:            v.Bool("tracing", def.Tracing),
		DeadLetter: DeadLetter{
			Driver:     dl.String("driver", def.DeadLetter.Driver),
			Path:       dl.String("path", def.DeadLetter.Path),
			MaxEntries: dl.Int("max_entries", def.DeadLetter.MaxEntries),
		},
	}
}

// Validate checks enumerated values and the settings they require.
func (s Settings) Validate() error {
	switch s.Ownership {
	case OwnershipWeak, OwnershipStrong, "":
	default:
		return fmt.Errorf("%w: ownership %q", ErrInvalidSettings, s.Ownership)
	}

	for _, m := range []string{s.Marshaller, s.AsyncMarshaller} {
		switch m {
		case MarshallerInline, MarshallerGoroutine, "":
		case MarshallerLimited:
			if s.MaxConcurrency <= 0 {
				return fmt.Errorf("%w: max_concurrency must be positive for the limited marshaller", ErrInvalidSettings)
			}
		default:
			return fmt.Errorf("%w: marshaller %q", ErrInvalidSettings, m)
		}
	}

	switch s.DeadLetter.Driver {
	case "", DriverMemory:
	case DriverSQLite:
		if s.DeadLetter.Path == "" {
			return fmt.Errorf("%w: dead_letter.path is required for sqlite", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: dead_letter.driver %q", ErrInvalidSettings, s.DeadLetter.Driver)
	}
	return nil
}
