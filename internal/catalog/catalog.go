// Package catalog implements the read side of the content catalog:
// per-kind listings and details, genres, seasons and the unified search.
package catalog

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/cinetro/internal/database"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Collection exposes the catalog operations of a single content kind.
type Collection[T database.Content] struct {
	store database.ContentStore[T]
}

// Kind returns the content kind of the collection.
func (c Collection[T]) Kind() database.Kind {
	return c.store.Spec().Kind
}

// Spec returns the descriptor of the collection's kind.
func (c Collection[T]) Spec() *database.KindSpec {
	return c.store.Spec()
}

// List returns the records matching f, newest first.
func (c Collection[T]) List(ctx context.Context, f database.Filter) ([]T, error) {
	return c.store.List(ctx, f)
}

// Featured returns the featured records, ignoring any other filter.
func (c Collection[T]) Featured(ctx context.Context) ([]T, error) {
	return c.Flagged(ctx, database.FlagFeatured)
}

// Flagged returns the records with the given flag set.
func (c Collection[T]) Flagged(ctx context.Context, flag string) ([]T, error) {
	return c.store.List(ctx, database.Filter{Flags: map[string]bool{flag: true}})
}

// Detail returns a single record or an error wrapping database.ErrNotFound.
func (c Collection[T]) Detail(ctx context.Context, id uint) (*T, error) {
	return c.store.Get(ctx, id)
}

// Hit is a single search result.
type Hit struct {
	Kind database.Kind
	database.Summary
}

// Service answers catalog queries from a database.DB.
type Service struct {
	db database.DB
}

// New creates a new catalog service.
func New(db database.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Movies() Collection[database.Movie] {
	return Collection[database.Movie]{store: s.db.Movies()}
}

func (s *Service) TVShows() Collection[database.TVShow] {
	return Collection[database.TVShow]{store: s.db.TVShows()}
}

func (s *Service) BongoMovies() Collection[database.BongoMovie] {
	return Collection[database.BongoMovie]{store: s.db.BongoMovies()}
}

func (s *Service) LiveStreams() Collection[database.LiveStream] {
	return Collection[database.LiveStream]{store: s.db.LiveStreams()}
}

// Trending returns the TV shows flagged as trending.
func (s *Service) Trending(ctx context.Context) ([]database.TVShow, error) {
	return s.TVShows().Flagged(ctx, database.FlagTrending)
}

// Genres returns every genre.
func (s *Service) Genres(ctx context.Context) ([]database.Genre, error) {
	return s.db.ListGenres(ctx)
}

// UnknownGenres returns the ids that do not belong to any genre, in the given order.
func (s *Service) UnknownGenres(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	genres, err := s.db.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	known := lo.SliceToMap(genres, func(g database.Genre) (uint, struct{}) { return g.ID, struct{}{} })
	return lo.Filter(ids, func(id uint, _ int) bool {
		_, ok := known[id]
		return !ok
	}), nil
}

// Season returns a season with its episodes and download links.
func (s *Service) Season(ctx context.Context, id uint) (*database.Season, error) {
	return s.db.GetSeason(ctx, id)
}

// Search matches term as a whole against every content kind.
// Results are grouped by kind in the order movie, tv, bongomovie, livestream,
// each group newest first. An empty term yields no results; whitespace is
// significant and searched like any other text.
func (s *Service) Search(ctx context.Context, term string) ([]Hit, error) {
	if term == "" {
		return []Hit{}, nil
	}

	buckets := make([][]Hit, 4)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(searchKind(ctx, s.db.Movies(), term, &buckets[0]))
	g.Go(searchKind(ctx, s.db.TVShows(), term, &buckets[1]))
	g.Go(searchKind(ctx, s.db.BongoMovies(), term, &buckets[2]))
	g.Go(searchKind(ctx, s.db.LiveStreams(), term, &buckets[3]))
	if err := g.Wait(); err != nil {
		log.Error("Search failed", "term", term, "error", err)
		return nil, err
	}

	return lo.Flatten(buckets), nil
}

func searchKind[T database.Content](ctx context.Context, store database.ContentStore[T], term string, bucket *[]Hit) func() error {
	return func() error {
		items, err := store.List(ctx, database.Filter{Phrase: term})
		if err != nil {
			return err
		}
		kind := store.Spec().Kind
		*bucket = lo.Map(items, func(item T, _ int) Hit {
			return Hit{Kind: kind, Summary: item.Summary()}
		})
		return nil
	}
}
