package database

import (
	"context"
	"time"
)

// ContentStore is the persistence API shared by every content kind.
type ContentStore[T Content] interface {
	// Spec describes the kind stored here.
	Spec() *KindSpec
	// List returns the records matching f, newest first.
	List(ctx context.Context, f Filter) ([]T, error)
	// Get returns a single record with its relations resolved.
	Get(ctx context.Context, id uint) (*T, error)
	// Create stores a record together with its owned children and genre links.
	Create(ctx context.Context, item *T) error
	// Delete removes a record, its owned children and its genre links.
	Delete(ctx context.Context, id uint) error
}

// DB defines the interface for database operations.
type DB interface {
	Movies() ContentStore[Movie]
	TVShows() ContentStore[TVShow]
	BongoMovies() ContentStore[BongoMovie]
	LiveStreams() ContentStore[LiveStream]

	// Genres
	ListGenres(ctx context.Context) ([]Genre, error)
	GetOrCreateGenre(ctx context.Context, name string) (*Genre, error)

	// Seasons
	GetSeason(ctx context.Context, id uint) (*Season, error)

	// Contact messages
	CreateContactMessage(ctx context.Context, msg *ContactMessage) error

	// Statistics
	GetStats(ctx context.Context) (*Stats, error)

	// Utility
	Ping(ctx context.Context) error
	Close() error
}

// Stats holds row counts for every catalog table.
type Stats struct {
	Genres          int64
	Movies          int64
	BongoMovies     int64
	TVShows         int64
	Seasons         int64
	Episodes        int64
	DownloadLinks   int64
	LiveStreams     int64
	ContactMessages int64
	// LastUpdated is the most recent update of any content record, nil when empty.
	LastUpdated *time.Time
}
