package database

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

// Record holds the primary key and timestamps shared by every content row.
type Record struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// Artwork holds the poster and backdrop image-or-URL pairs.
// A locally stored image takes precedence over the external URL.
type Artwork struct {
	PosterImage   string
	PosterURL     *string
	BackdropImage string
	BackdropURL   *string
}

// Summary is the minimal view of a record used by cross-kind search.
type Summary struct {
	ID        uint
	Title     string
	Artwork   Artwork
	CreatedAt time.Time
}

// Content is implemented by every content kind.
type Content interface {
	Summary() Summary
}

// Genre is a named category attached to content of any kind.
type Genre struct {
	ID   uint   `gorm:"primarykey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

// FilmDetails is the field set shared by Movie and BongoMovie.
type FilmDetails struct {
	Title       string `gorm:"size:200;not null"`
	Description string
	ReleaseYear int
	Rating      *float64
	TrailerURL  *string `gorm:"size:100"` // YouTube video ID
	DownloadURL *string
	Duration    *int // minutes
	Director    string `gorm:"size:200"`
	Cast        string
	Is4K        bool `gorm:"column:is_4k"`
	IsNew       bool
	IsFeatured  bool
}

// Movie is an international feature film.
type Movie struct {
	Record
	FilmDetails
	Artwork
	Genres []Genre `gorm:"many2many:movie_genres;joinForeignKey:ContentID;joinReferences:GenreID"`
}

// BongoMovie is a regional feature film. It has the same shape as Movie but lives in its own table.
type BongoMovie struct {
	Record
	FilmDetails
	Artwork
	Genres []Genre `gorm:"many2many:bongo_movie_genres;joinForeignKey:ContentID;joinReferences:GenreID"`
}

// TVShow is a series made of seasons.
type TVShow struct {
	Record
	Title       string `gorm:"size:255;not null"`
	Description string
	ReleaseYear int
	Rating      *float64
	Artwork
	TrailerURL *string `gorm:"size:512"`
	IsFeatured bool
	IsNew      bool
	IsTrending bool
	Director   string `gorm:"size:255"`
	Cast       string
	Genres     []Genre  `gorm:"many2many:tv_show_genres;joinForeignKey:ContentID;joinReferences:GenreID"`
	Seasons    []Season `gorm:"foreignKey:TVShowID;constraint:OnDelete:CASCADE"`
}

// Season belongs to a TVShow and owns its episodes.
type Season struct {
	ID           uint      `gorm:"primarykey"`
	TVShowID     uint      `gorm:"column:tv_show_id;not null;uniqueIndex:idx_season_show_number"`
	SeasonNumber int       `gorm:"not null;uniqueIndex:idx_season_show_number"`
	EpisodeCount int       `gorm:"not null"` // total episodes planned for the season
	Episodes     []Episode `gorm:"constraint:OnDelete:CASCADE"`
}

// Episode belongs to a Season and owns its download links.
type Episode struct {
	ID            uint           `gorm:"primarykey"`
	SeasonID      uint           `gorm:"not null;uniqueIndex:idx_episode_season_number"`
	EpisodeNumber int            `gorm:"not null;uniqueIndex:idx_episode_season_number"`
	Title         *string        `gorm:"size:200"`
	DownloadLinks []DownloadLink `gorm:"constraint:OnDelete:CASCADE"`
}

// Quality is the resolution code of a download link.
type Quality string

const (
	QualityHD Quality = "HD"
	Quality4K Quality = "4K"
	QualitySD Quality = "SD"
)

// Label returns the human readable name of the quality code.
func (q Quality) Label() string {
	switch q {
	case QualityHD:
		return "High Definition"
	case Quality4K:
		return "Ultra HD"
	case QualitySD:
		return "Standard Definition"
	default:
		return string(q)
	}
}

// Valid reports whether q is a known quality code.
func (q Quality) Valid() bool {
	return q == QualityHD || q == Quality4K || q == QualitySD
}

// DownloadLink points to a downloadable file for an episode in one quality.
type DownloadLink struct {
	ID        uint    `gorm:"primarykey"`
	EpisodeID uint    `gorm:"not null;uniqueIndex:idx_link_episode_quality"`
	Quality   Quality `gorm:"size:10;not null;uniqueIndex:idx_link_episode_quality"`
	URL       string  `gorm:"not null"`
	Source    *string `gorm:"size:100"`
}

// LiveStream is a video that is streamed live.
type LiveStream struct {
	Record
	Title       string `gorm:"size:200;not null"`
	Description string
	VideoFile   string
	Artwork
	IsLive     bool
	IsFeatured bool
	Genres     []Genre `gorm:"many2many:live_stream_genres;joinForeignKey:ContentID;joinReferences:GenreID"`
}

// ContactMessage is a message submitted through the contact form.
type ContactMessage struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"size:100;not null"`
	Email     string `gorm:"size:254;not null"`
	Message   string `gorm:"not null"`
	CreatedAt time.Time
}

func (Movie) TableName() string      { return "movies" }
func (BongoMovie) TableName() string { return "bongo_movies" }
func (TVShow) TableName() string     { return "tv_shows" }
func (LiveStream) TableName() string { return "live_streams" }

func (m Movie) Summary() Summary {
	return Summary{ID: m.ID, Title: m.Title, Artwork: m.Artwork, CreatedAt: m.CreatedAt}
}

func (m BongoMovie) Summary() Summary {
	return Summary{ID: m.ID, Title: m.Title, Artwork: m.Artwork, CreatedAt: m.CreatedAt}
}

func (s TVShow) Summary() Summary {
	return Summary{ID: s.ID, Title: s.Title, Artwork: s.Artwork, CreatedAt: s.CreatedAt}
}

func (l LiveStream) Summary() Summary {
	return Summary{ID: l.ID, Title: l.Title, Artwork: l.Artwork, CreatedAt: l.CreatedAt}
}

func validateRating(rating *float64) error {
	if rating != nil && (math.IsNaN(*rating) || *rating < 0 || *rating > 10) {
		return fmt.Errorf("%w: got %v", ErrInvalidRating, *rating)
	}
	return nil
}

func (m *Movie) BeforeSave(*gorm.DB) error      { return validateRating(m.Rating) }
func (m *BongoMovie) BeforeSave(*gorm.DB) error { return validateRating(m.Rating) }
func (s *TVShow) BeforeSave(*gorm.DB) error     { return validateRating(s.Rating) }

func (s *Season) BeforeSave(*gorm.DB) error {
	if s.SeasonNumber < 1 {
		return fmt.Errorf("%w: season number %d", ErrInvalidNumber, s.SeasonNumber)
	}
	if s.EpisodeCount == 0 {
		s.EpisodeCount = 1
	}
	if s.EpisodeCount < 1 {
		return fmt.Errorf("%w: episode count %d", ErrInvalidNumber, s.EpisodeCount)
	}
	return nil
}

func (e *Episode) BeforeSave(*gorm.DB) error {
	if e.EpisodeNumber < 1 {
		return fmt.Errorf("%w: episode number %d", ErrInvalidNumber, e.EpisodeNumber)
	}
	return nil
}

func (l *DownloadLink) BeforeSave(*gorm.DB) error {
	if !l.Quality.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidQuality, l.Quality)
	}
	return nil
}
