package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/jon4hz/cinetro/internal/config"
	"github.com/jon4hz/cinetro/internal/database"
)

var _ database.DB = (*CatalogCache)(nil)

// Cache key prefixes.
const (
	GenresCachePrefix  = "genres-"
	SeasonsCachePrefix = "seasons-"
	listSuffix         = "-list-"
	detailSuffix       = "-detail-"
)

// contentCache is a read-through cache in front of a content store.
// Writes go to the store and drop every cached entry of the kind.
type contentCache[T database.Content] struct {
	next    database.ContentStore[T]
	lists   *PrefixedCache[[]T]
	details *PrefixedCache[T]
	ttl     time.Duration
}

func newContentCache[T database.Content](cfg *config.CacheConfig, next database.ContentStore[T]) *contentCache[T] {
	kind := string(next.Spec().Kind)
	return &contentCache[T]{
		next:    next,
		lists:   NewPrefixedCache[[]T](newCacheInstanceByType(cfg), cfg.Type, kind+listSuffix),
		details: NewPrefixedCache[T](newCacheInstanceByType(cfg), cfg.Type, kind+detailSuffix),
		ttl:     cfg.TTL,
	}
}

func (c *contentCache[T]) Spec() *database.KindSpec {
	return c.next.Spec()
}

func (c *contentCache[T]) List(ctx context.Context, f database.Filter) ([]T, error) {
	key := f.Key()
	if items, err := c.lists.Get(ctx, key); err == nil {
		return items, nil
	}

	items, err := c.next.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := c.lists.Set(ctx, key, items, store.WithExpiration(c.ttl)); err != nil {
		log.Warn("Failed to cache content list", "kind", c.Spec().Kind, "error", err)
	}
	return items, nil
}

func (c *contentCache[T]) Get(ctx context.Context, id uint) (*T, error) {
	if item, err := c.details.Get(ctx, id); err == nil {
		return &item, nil
	}

	item, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.details.Set(ctx, id, *item, store.WithExpiration(c.ttl)); err != nil {
		log.Warn("Failed to cache content detail", "kind", c.Spec().Kind, "id", id, "error", err)
	}
	return item, nil
}

func (c *contentCache[T]) Create(ctx context.Context, item *T) error {
	if err := c.next.Create(ctx, item); err != nil {
		return err
	}
	c.clear(ctx)
	return nil
}

func (c *contentCache[T]) Delete(ctx context.Context, id uint) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.clear(ctx)
	return nil
}

func (c *contentCache[T]) clear(ctx context.Context) {
	for _, err := range []error{c.lists.Clear(ctx), c.details.Clear(ctx)} {
		if err != nil {
			log.Errorf("failed to clear %s cache: %v", c.Spec().Kind, err)
		}
	}
}

// CatalogCache wraps a database.DB and caches catalog reads for the configured TTL.
type CatalogCache struct {
	database.DB

	movies      *contentCache[database.Movie]
	tvShows     *contentCache[database.TVShow]
	bongoMovies *contentCache[database.BongoMovie]
	liveStreams *contentCache[database.LiveStream]

	genres  *PrefixedCache[[]database.Genre]
	seasons *PrefixedCache[database.Season]
	ttl     time.Duration
}

// NewCatalogCache creates a caching decorator around db.
func NewCatalogCache(cfg *config.CacheConfig, db database.DB) (*CatalogCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("missing cache config")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", cfg.TTL)
	}
	return &CatalogCache{
		DB:          db,
		movies:      newContentCache(cfg, db.Movies()),
		tvShows:     newContentCache(cfg, db.TVShows()),
		bongoMovies: newContentCache(cfg, db.BongoMovies()),
		liveStreams: newContentCache(cfg, db.LiveStreams()),
		genres:      NewPrefixedCache[[]database.Genre](newCacheInstanceByType(cfg), cfg.Type, GenresCachePrefix),
		seasons:     NewPrefixedCache[database.Season](newCacheInstanceByType(cfg), cfg.Type, SeasonsCachePrefix),
		ttl:         cfg.TTL,
	}, nil
}

func (c *CatalogCache) Movies() database.ContentStore[database.Movie] {
	return c.movies
}

func (c *CatalogCache) TVShows() database.ContentStore[database.TVShow] {
	return &tvShowCache{contentCache: c.tvShows, seasons: c.seasons}
}

func (c *CatalogCache) BongoMovies() database.ContentStore[database.BongoMovie] {
	return c.bongoMovies
}

func (c *CatalogCache) LiveStreams() database.ContentStore[database.LiveStream] {
	return c.liveStreams
}

func (c *CatalogCache) ListGenres(ctx context.Context) ([]database.Genre, error) {
	if genres, err := c.genres.Get(ctx, "all"); err == nil {
		return genres, nil
	}

	genres, err := c.DB.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.genres.Set(ctx, "all", genres, store.WithExpiration(c.ttl)); err != nil {
		log.Warn("Failed to cache genres", "error", err)
	}
	return genres, nil
}

func (c *CatalogCache) GetOrCreateGenre(ctx context.Context, name string) (*database.Genre, error) {
	genre, err := c.DB.GetOrCreateGenre(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := c.genres.Clear(ctx); err != nil {
		log.Errorf("failed to clear genre cache: %v", err)
	}
	return genre, nil
}

func (c *CatalogCache) GetSeason(ctx context.Context, id uint) (*database.Season, error) {
	if season, err := c.seasons.Get(ctx, id); err == nil {
		return &season, nil
	}

	season, err := c.DB.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.seasons.Set(ctx, id, *season, store.WithExpiration(c.ttl)); err != nil {
		log.Warn("Failed to cache season", "id", id, "error", err)
	}
	return season, nil
}

// Stats is the hit and miss counters of one cache.
type Stats struct {
	*codec.Stats
	CacheName string `json:"cacheName"`
}

// CacheStats returns the hit and miss counters of every catalog cache.
func (c *CatalogCache) CacheStats() []*Stats {
	return []*Stats{
		{Stats: c.movies.lists.GetStats(), CacheName: "movie-lists"},
		{Stats: c.movies.details.GetStats(), CacheName: "movie-details"},
		{Stats: c.tvShows.lists.GetStats(), CacheName: "tv-lists"},
		{Stats: c.tvShows.details.GetStats(), CacheName: "tv-details"},
		{Stats: c.bongoMovies.lists.GetStats(), CacheName: "bongomovie-lists"},
		{Stats: c.bongoMovies.details.GetStats(), CacheName: "bongomovie-details"},
		{Stats: c.liveStreams.lists.GetStats(), CacheName: "livestream-lists"},
		{Stats: c.liveStreams.details.GetStats(), CacheName: "livestream-details"},
		{Stats: c.genres.GetStats(), CacheName: "genres"},
		{Stats: c.seasons.GetStats(), CacheName: "seasons"},
	}
}

// tvShowCache also drops cached seasons, which belong to a show.
type tvShowCache struct {
	*contentCache[database.TVShow]
	seasons *PrefixedCache[database.Season]
}

func (c *tvShowCache) Create(ctx context.Context, item *database.TVShow) error {
	if err := c.contentCache.Create(ctx, item); err != nil {
		return err
	}
	c.clearSeasons(ctx)
	return nil
}

func (c *tvShowCache) Delete(ctx context.Context, id uint) error {
	if err := c.contentCache.Delete(ctx, id); err != nil {
		return err
	}
	c.clearSeasons(ctx)
	return nil
}

func (c *tvShowCache) clearSeasons(ctx context.Context) {
	if err := c.seasons.Clear(ctx); err != nil {
		log.Errorf("failed to clear season cache: %v", err)
	}
}
