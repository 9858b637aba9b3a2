package mock

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jon4hz/cinetro/internal/database"
	"github.com/samber/lo"
)

var _ database.DB = (*MockDB)(nil)

// ContentStore is an in-memory database.ContentStore.
// Filters passed to List are recorded but not applied.
type ContentStore[T database.Content] struct {
	mu     sync.RWMutex
	spec   *database.KindSpec
	setID  func(*T, uint)
	items  []T
	nextID uint

	filters   []database.Filter
	listCalls int
	getCalls  int

	// Error simulation
	ListError   error
	GetError    error
	CreateError error
	DeleteError error
}

func newContentStore[T database.Content](spec *database.KindSpec, setID func(*T, uint)) *ContentStore[T] {
	return &ContentStore[T]{spec: spec, setID: setID, nextID: 1}
}

func (s *ContentStore[T]) Spec() *database.KindSpec {
	return s.spec
}

// List returns every stored item, most recently added first.
func (s *ContentStore[T]) List(ctx context.Context, f database.Filter) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls++
	s.filters = append(s.filters, f)
	if s.ListError != nil {
		return nil, s.ListError
	}

	for flag := range f.Flags {
		if !s.spec.HasFlag(flag) {
			return nil, fmt.Errorf("%w: %s has no %s flag", database.ErrUnknownFilter, s.spec.Kind, flag)
		}
	}

	items := slices.Clone(s.items)
	slices.Reverse(items)
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *ContentStore[T]) Get(ctx context.Context, id uint) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if s.GetError != nil {
		return nil, s.GetError
	}

	item, ok := lo.Find(s.items, func(item T) bool { return item.Summary().ID == id })
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", s.spec.Kind, id, database.ErrNotFound)
	}
	return &item, nil
}

func (s *ContentStore[T]) Create(ctx context.Context, item *T) error {
	if s.CreateError != nil {
		return s.CreateError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setID(item, s.nextID)
	s.nextID++
	s.items = append(s.items, *item)
	return nil
}

func (s *ContentStore[T]) Delete(ctx context.Context, id uint) error {
	if s.DeleteError != nil {
		return s.DeleteError
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.items, func(item T) bool { return item.Summary().ID == id })
	if idx < 0 {
		return fmt.Errorf("%s %d: %w", s.spec.Kind, id, database.ErrNotFound)
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	return nil
}

// Filters returns the filters passed to List so far.
func (s *ContentStore[T]) Filters() []database.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.filters)
}

// ListCalls returns how many times List was called.
func (s *ContentStore[T]) ListCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listCalls
}

// GetCalls returns how many times Get was called.
func (s *ContentStore[T]) GetCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getCalls
}

func (s *ContentStore[T]) count() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items))
}

func (s *ContentStore[T]) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.nextID = 1
	s.filters = nil
	s.listCalls = 0
	s.getCalls = 0
	s.ListError = nil
	s.GetError = nil
	s.CreateError = nil
	s.DeleteError = nil
}

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	movies      *ContentStore[database.Movie]
	tvShows     *ContentStore[database.TVShow]
	bongoMovies *ContentStore[database.BongoMovie]
	liveStreams *ContentStore[database.LiveStream]

	genres          []database.Genre
	seasons         map[uint]*database.Season
	nextSeasonID    uint
	contactMessages []database.ContactMessage

	genreCalls  int
	seasonCalls int

	// Error simulation
	ListGenresError           error
	GetOrCreateGenreError     error
	GetSeasonError            error
	CreateContactMessageError error
	GetStatsError             error
	PingError                 error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		movies:       newContentStore(database.MovieSpec, func(m *database.Movie, id uint) { m.ID = id }),
		tvShows:      newContentStore(database.TVShowSpec, func(s *database.TVShow, id uint) { s.ID = id }),
		bongoMovies:  newContentStore(database.BongoMovieSpec, func(m *database.BongoMovie, id uint) { m.ID = id }),
		liveStreams:  newContentStore(database.LiveStreamSpec, func(l *database.LiveStream, id uint) { l.ID = id }),
		seasons:      make(map[uint]*database.Season),
		nextSeasonID: 1,
	}
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.movies.reset()
	m.tvShows.reset()
	m.bongoMovies.reset()
	m.liveStreams.reset()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.genres = nil
	m.seasons = make(map[uint]*database.Season)
	m.nextSeasonID = 1
	m.contactMessages = nil
	m.genreCalls = 0
	m.seasonCalls = 0

	m.ListGenresError = nil
	m.GetOrCreateGenreError = nil
	m.GetSeasonError = nil
	m.CreateContactMessageError = nil
	m.GetStatsError = nil
	m.PingError = nil
}

// Content stores

func (m *MockDB) Movies() database.ContentStore[database.Movie]           { return m.movies }
func (m *MockDB) TVShows() database.ContentStore[database.TVShow]         { return m.tvShows }
func (m *MockDB) BongoMovies() database.ContentStore[database.BongoMovie] { return m.bongoMovies }
func (m *MockDB) LiveStreams() database.ContentStore[database.LiveStream] { return m.liveStreams }

// MovieStore returns the concrete movie store for error injection and call inspection.
func (m *MockDB) MovieStore() *ContentStore[database.Movie] { return m.movies }

func (m *MockDB) TVShowStore() *ContentStore[database.TVShow] { return m.tvShows }

func (m *MockDB) BongoMovieStore() *ContentStore[database.BongoMovie] { return m.bongoMovies }

func (m *MockDB) LiveStreamStore() *ContentStore[database.LiveStream] { return m.liveStreams }

// Genre operations

func (m *MockDB) ListGenres(ctx context.Context) ([]database.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.genreCalls++
	if m.ListGenresError != nil {
		return nil, m.ListGenresError
	}
	return append([]database.Genre{}, m.genres...), nil
}

func (m *MockDB) GetOrCreateGenre(ctx context.Context, name string) (*database.Genre, error) {
	if m.GetOrCreateGenreError != nil {
		return nil, m.GetOrCreateGenreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name = strings.TrimSpace(name)
	if g, ok := lo.Find(m.genres, func(g database.Genre) bool { return g.Name == name }); ok {
		return &g, nil
	}
	g := database.Genre{ID: uint(len(m.genres) + 1), Name: name}
	m.genres = append(m.genres, g)
	return &g, nil
}

// GenreCalls returns how many times ListGenres was called.
func (m *MockDB) GenreCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.genreCalls
}

// Season operations

// AddSeason stores a season so it can be fetched with GetSeason.
func (m *MockDB) AddSeason(season database.Season) *database.Season {
	m.mu.Lock()
	defer m.mu.Unlock()

	season.ID = m.nextSeasonID
	m.nextSeasonID++
	m.seasons[season.ID] = &season
	return &season
}

func (m *MockDB) GetSeason(ctx context.Context, id uint) (*database.Season, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seasonCalls++
	if m.GetSeasonError != nil {
		return nil, m.GetSeasonError
	}

	season, ok := m.seasons[id]
	if !ok {
		return nil, fmt.Errorf("season %d: %w", id, database.ErrNotFound)
	}
	s := *season
	return &s, nil
}

// SeasonCalls returns how many times GetSeason was called.
func (m *MockDB) SeasonCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seasonCalls
}

// Contact messages

func (m *MockDB) CreateContactMessage(ctx context.Context, msg *database.ContactMessage) error {
	if m.CreateContactMessageError != nil {
		return m.CreateContactMessageError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msg.ID = uint(len(m.contactMessages) + 1)
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.contactMessages = append(m.contactMessages, *msg)
	return nil
}

// ContactMessages returns the stored contact messages.
func (m *MockDB) ContactMessages() []database.ContactMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.contactMessages)
}

// Statistics

func (m *MockDB) GetStats(ctx context.Context) (*database.Stats, error) {
	if m.GetStatsError != nil {
		return nil, m.GetStatsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &database.Stats{
		Genres:          int64(len(m.genres)),
		Movies:          m.movies.count(),
		BongoMovies:     m.bongoMovies.count(),
		TVShows:         m.tvShows.count(),
		LiveStreams:     m.liveStreams.count(),
		Seasons:         int64(len(m.seasons)),
		ContactMessages: int64(len(m.contactMessages)),
	}
	return stats, nil
}

// Utility

func (m *MockDB) Ping(ctx context.Context) error {
	return m.PingError
}

func (m *MockDB) Close() error {
	return nil
}
