// Package seed loads catalog content from a YAML file into the database.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/cinetro/internal/database"
	"gopkg.in/yaml.v3"
)

// Catalog is the content of a seed file.
type Catalog struct {
	Genres      []string     `yaml:"genres"`
	Movies      []Film       `yaml:"movies"`
	BongoMovies []Film       `yaml:"bongo_movies"`
	TVShows     []TVShow     `yaml:"tv_shows"`
	LiveStreams []LiveStream `yaml:"live_streams"`
}

// Artwork is the poster and backdrop of an entry.
type Artwork struct {
	PosterImage   string  `yaml:"poster_image"`
	PosterURL     *string `yaml:"poster_url"`
	BackdropImage string  `yaml:"backdrop_image"`
	BackdropURL   *string `yaml:"backdrop_url"`
}

// Film is a movie or bongo movie entry.
type Film struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	ReleaseYear int        `yaml:"release_year"`
	Rating      *float64   `yaml:"rating"`
	TrailerURL  *string    `yaml:"trailer_url"`
	DownloadURL *string    `yaml:"download_url"`
	Duration    *int       `yaml:"duration"`
	Director    string     `yaml:"director"`
	Cast        string     `yaml:"cast"`
	Is4K        bool       `yaml:"is_4k"`
	IsNew       bool       `yaml:"is_new"`
	IsFeatured  bool       `yaml:"is_featured"`
	Genres      []string   `yaml:"genres"`
	CreatedAt   *time.Time `yaml:"created_at"`
	Artwork     `yaml:",inline"`
}

// TVShow is a TV show entry with its seasons.
type TVShow struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	ReleaseYear int        `yaml:"release_year"`
	Rating      *float64   `yaml:"rating"`
	TrailerURL  *string    `yaml:"trailer_url"`
	Director    string     `yaml:"director"`
	Cast        string     `yaml:"cast"`
	IsFeatured  bool       `yaml:"is_featured"`
	IsNew       bool       `yaml:"is_new"`
	IsTrending  bool       `yaml:"is_trending"`
	Genres      []string   `yaml:"genres"`
	Seasons     []Season   `yaml:"seasons"`
	CreatedAt   *time.Time `yaml:"created_at"`
	Artwork     `yaml:",inline"`
}

type Season struct {
	SeasonNumber int       `yaml:"season_number"`
	EpisodeCount int       `yaml:"episode_count"`
	Episodes     []Episode `yaml:"episodes"`
}

type Episode struct {
	EpisodeNumber int            `yaml:"episode_number"`
	Title         *string        `yaml:"title"`
	DownloadLinks []DownloadLink `yaml:"download_links"`
}

type DownloadLink struct {
	Quality string  `yaml:"quality"`
	URL     string  `yaml:"url"`
	Source  *string `yaml:"source"`
}

// LiveStream is a live stream entry. IsLive defaults to true.
type LiveStream struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	VideoFile   string     `yaml:"video_file"`
	IsLive      *bool      `yaml:"is_live"`
	IsFeatured  bool       `yaml:"is_featured"`
	Genres      []string   `yaml:"genres"`
	CreatedAt   *time.Time `yaml:"created_at"`
	Artwork     `yaml:",inline"`
}

// Result counts the records written by Apply.
type Result struct {
	Genres      int
	Movies      int
	BongoMovies int
	TVShows     int
	LiveStreams int
}

// Load reads a seed file. Unknown keys are rejected.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes seed data.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cat Catalog
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &cat, nil
}

// Apply writes the catalog to db. Genres are created on demand and reused by name.
// It stops at the first failing record; records written before it are kept.
func Apply(ctx context.Context, db database.DB, cat *Catalog) (*Result, error) {
	a := &applier{db: db, genres: make(map[string]database.Genre)}

	for _, name := range cat.Genres {
		if _, err := a.genreList(ctx, []string{name}); err != nil {
			return &a.result, err
		}
	}

	for _, f := range cat.Movies {
		genres, err := a.genreList(ctx, f.Genres)
		if err != nil {
			return &a.result, err
		}
		m := &database.Movie{Record: record(f.CreatedAt), FilmDetails: f.details(), Artwork: f.Artwork.model(), Genres: genres}
		if err := db.Movies().Create(ctx, m); err != nil {
			return &a.result, fmt.Errorf("movie %q: %w", f.Title, err)
		}
		a.result.Movies++
	}

	for _, f := range cat.BongoMovies {
		genres, err := a.genreList(ctx, f.Genres)
		if err != nil {
			return &a.result, err
		}
		m := &database.BongoMovie{Record: record(f.CreatedAt), FilmDetails: f.details(), Artwork: f.Artwork.model(), Genres: genres}
		if err := db.BongoMovies().Create(ctx, m); err != nil {
			return &a.result, fmt.Errorf("bongo movie %q: %w", f.Title, err)
		}
		a.result.BongoMovies++
	}

	for _, s := range cat.TVShows {
		genres, err := a.genreList(ctx, s.Genres)
		if err != nil {
			return &a.result, err
		}
		show := s.model(genres)
		if err := db.TVShows().Create(ctx, show); err != nil {
			return &a.result, fmt.Errorf("tv show %q: %w", s.Title, err)
		}
		a.result.TVShows++
	}

	for _, l := range cat.LiveStreams {
		genres, err := a.genreList(ctx, l.Genres)
		if err != nil {
			return &a.result, err
		}
		isLive := true
		if l.IsLive != nil {
			isLive = *l.IsLive
		}
		stream := &database.LiveStream{
			Record:      record(l.CreatedAt),
			Title:       l.Title,
			Description: l.Description,
			VideoFile:   l.VideoFile,
			Artwork:     l.Artwork.model(),
			IsLive:      isLive,
			IsFeatured:  l.IsFeatured,
			Genres:      genres,
		}
		if err := db.LiveStreams().Create(ctx, stream); err != nil {
			return &a.result, fmt.Errorf("live stream %q: %w", l.Title, err)
		}
		a.result.LiveStreams++
	}

	log.Info("Catalog seeded",
		"genres", a.result.Genres,
		"movies", a.result.Movies,
		"bongo_movies", a.result.BongoMovies,
		"tv_shows", a.result.TVShows,
		"live_streams", a.result.LiveStreams,
	)
	return &a.result, nil
}

type applier struct {
	db     database.DB
	genres map[string]database.Genre
	result Result
}

func (a *applier) genreList(ctx context.Context, names []string) ([]database.Genre, error) {
	genres := make([]database.Genre, 0, len(names))
	for _, name := range names {
		g, ok := a.genres[name]
		if !ok {
			created, err := a.db.GetOrCreateGenre(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("genre %q: %w", name, err)
			}
			g = *created
			a.genres[name] = g
			a.result.Genres++
		}
		genres = append(genres, g)
	}
	return genres, nil
}

func record(createdAt *time.Time) database.Record {
	if createdAt == nil {
		return database.Record{}
	}
	return database.Record{CreatedAt: *createdAt}
}

func (a Artwork) model() database.Artwork {
	return database.Artwork{
		PosterImage:   a.PosterImage,
		PosterURL:     a.PosterURL,
		BackdropImage: a.BackdropImage,
		BackdropURL:   a.BackdropURL,
	}
}

func (f Film) details() database.FilmDetails {
	return database.FilmDetails{
		Title:       f.Title,
		Description: f.Description,
		ReleaseYear: f.ReleaseYear,
		Rating:      f.Rating,
		TrailerURL:  f.TrailerURL,
		DownloadURL: f.DownloadURL,
		Duration:    f.Duration,
		Director:    f.Director,
		Cast:        f.Cast,
		Is4K:        f.Is4K,
		IsNew:       f.IsNew,
		IsFeatured:  f.IsFeatured,
	}
}

func (s TVShow) model(genres []database.Genre) *database.TVShow {
	show := &database.TVShow{
		Record:      record(s.CreatedAt),
		Title:       s.Title,
		Description: s.Description,
		ReleaseYear: s.ReleaseYear,
		Rating:      s.Rating,
		Artwork:     s.Artwork.model(),
		TrailerURL:  s.TrailerURL,
		IsFeatured:  s.IsFeatured,
		IsNew:       s.IsNew,
		IsTrending:  s.IsTrending,
		Director:    s.Director,
		Cast:        s.Cast,
		Genres:      genres,
	}
	for _, season := range s.Seasons {
		ss := database.Season{SeasonNumber: season.SeasonNumber, EpisodeCount: season.EpisodeCount}
		for _, ep := range season.Episodes {
			e := database.Episode{EpisodeNumber: ep.EpisodeNumber, Title: ep.Title}
			for _, l := range ep.DownloadLinks {
				e.DownloadLinks = append(e.DownloadLinks, database.DownloadLink{
					Quality: database.Quality(l.Quality),
					URL:     l.URL,
					Source:  l.Source,
				})
			}
			ss.Episodes = append(ss.Episodes, e)
		}
		show.Seasons = append(show.Seasons, ss)
	}
	return show
}
