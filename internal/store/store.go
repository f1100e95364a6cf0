// Package store persists temperament, user events and response history.
package store

import (
	"context"

	"github.com/alex/affect/internal/affect"
)

// ResponseRecord is a stored response with its ID.
type ResponseRecord struct {
	ID string `json:"id"`
	affect.ResponseResult
}

// Store defines the persistence interface.
type Store interface {
	// SaveTemperament replaces the persisted temperament.
	SaveTemperament(ctx context.Context, t affect.Vector) error

	// LoadTemperament returns the persisted temperament. ok is false when
	// nothing has been saved yet.
	LoadTemperament(ctx context.Context) (t affect.Vector, ok bool, err error)

	// SaveEvent inserts or replaces a user event profile.
	SaveEvent(ctx context.Context, p affect.EventProfile) error

	// DeleteEvent removes a user event profile. Returns false if it did not exist.
	DeleteEvent(ctx context.Context, keyword string) (bool, error)

	// ListEvents returns user event profiles sorted by keyword.
	ListEvents(ctx context.Context) ([]affect.EventProfile, error)

	// RecordResponse appends a response to the history and returns its ID.
	RecordResponse(ctx context.Context, r affect.ResponseResult) (string, error)

	// RecentResponses returns up to limit responses, newest first.
	RecentResponses(ctx context.Context, limit int) ([]ResponseRecord, error)

	// Close closes the store.
	Close() error
}
