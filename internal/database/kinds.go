package database

import (
	"fmt"
	"slices"

	"gorm.io/gorm"
)

// Kind identifies a content category.
type Kind string

const (
	KindMovie      Kind = "movie"
	KindTVShow     Kind = "tv"
	KindBongoMovie Kind = "bongomovie"
	KindLiveStream Kind = "livestream"
)

// Flag columns that can be filtered on.
const (
	FlagFeatured = "is_featured"
	FlagNew      = "is_new"
	Flag4K       = "is_4k"
	FlagTrending = "is_trending"
	FlagLive     = "is_live"
)

// KindSpec describes how a content kind is stored, filtered and searched.
type KindSpec struct {
	Kind Kind
	// Table is the table holding the records.
	Table string
	// GenreTable is the many2many join table, keyed by content_id and genre_id.
	GenreTable string
	// SearchColumns are matched case-insensitively against a search term.
	SearchColumns []string
	// FlagColumns are the boolean columns a list can be filtered on.
	FlagColumns []string
	// preload loads the relations returned with every record.
	preload func(tx *gorm.DB) *gorm.DB
}

// HasFlag reports whether the kind can be filtered on the given flag column.
func (s *KindSpec) HasFlag(flag string) bool {
	return slices.Contains(s.FlagColumns, flag)
}

func (s *KindSpec) String() string {
	return string(s.Kind)
}

func orderGenres(tx *gorm.DB) *gorm.DB { return tx.Order("id") }

func preloadGenres(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Genres", orderGenres)
}

func preloadSeasons(tx *gorm.DB) *gorm.DB {
	return preloadGenres(tx).
		Preload("Seasons", func(tx *gorm.DB) *gorm.DB { return tx.Order("season_number") }).
		Preload("Seasons.Episodes", func(tx *gorm.DB) *gorm.DB { return tx.Order("episode_number") }).
		Preload("Seasons.Episodes.DownloadLinks", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") })
}

var (
	MovieSpec = &KindSpec{
		Kind:          KindMovie,
		Table:         "movies",
		GenreTable:    "movie_genres",
		SearchColumns: []string{"title", "director", "cast"},
		FlagColumns:   []string{FlagFeatured, FlagNew, Flag4K},
		preload:       preloadGenres,
	}
	TVShowSpec = &KindSpec{
		Kind:          KindTVShow,
		Table:         "tv_shows",
		GenreTable:    "tv_show_genres",
		SearchColumns: []string{"title", "director", "cast"},
		FlagColumns:   []string{FlagFeatured, FlagNew, FlagTrending},
		preload:       preloadSeasons,
	}
	BongoMovieSpec = &KindSpec{
		Kind:          KindBongoMovie,
		Table:         "bongo_movies",
		GenreTable:    "bongo_movie_genres",
		SearchColumns: []string{"title", "director", "cast"},
		FlagColumns:   []string{FlagFeatured, FlagNew, Flag4K},
		preload:       preloadGenres,
	}
	LiveStreamSpec = &KindSpec{
		Kind:          KindLiveStream,
		Table:         "live_streams",
		GenreTable:    "live_stream_genres",
		SearchColumns: []string{"title", "description"},
		FlagColumns:   []string{FlagFeatured, FlagLive},
		preload:       preloadGenres,
	}
)

// Specs lists every kind in search bucket order.
var Specs = []*KindSpec{MovieSpec, TVShowSpec, BongoMovieSpec, LiveStreamSpec}

// SpecFor returns the descriptor of a kind.
func SpecFor(kind Kind) (*KindSpec, error) {
	for _, s := range Specs {
		if s.Kind == kind {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown content kind %q", kind)
}
