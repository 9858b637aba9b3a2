package models

import "time"

// Genre is the JSON representation of a genre.
type Genre struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// DownloadLink is the JSON representation of an episode download link.
type DownloadLink struct {
	ID             uint    `json:"id"`
	Quality        string  `json:"quality"`
	QualityDisplay string  `json:"quality_display"`
	URL            string  `json:"url"`
	Source         *string `json:"source"`
}

// Episode is the JSON representation of an episode.
type Episode struct {
	ID            uint           `json:"id"`
	EpisodeNumber int            `json:"episode_number"`
	Title         *string        `json:"title"`
	DownloadLinks []DownloadLink `json:"download_links"`
}

// Season is the JSON representation of a season.
type Season struct {
	ID           uint      `json:"id"`
	SeasonNumber int       `json:"season_number"`
	EpisodeCount int       `json:"episode_count"`
	Episodes     []Episode `json:"episodes"`
}

// Film is the JSON representation of a movie or a bongo movie.
type Film struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ReleaseYear int       `json:"release_year"`
	Rating      *float64  `json:"rating"`
	Poster      *string   `json:"poster"`
	Backdrop    *string   `json:"backdrop"`
	TrailerURL  *string   `json:"trailer_url"`
	DownloadURL *string   `json:"download_url"`
	Duration    *int      `json:"duration"`
	Genres      []Genre   `json:"genres"`
	Is4K        bool      `json:"is_4k"`
	IsNew       bool      `json:"is_new"`
	IsFeatured  bool      `json:"is_featured"`
	Director    string    `json:"director"`
	Cast        string    `json:"cast"`
	CreatedAt   time.Time `json:"created_at"`
}

// TVShow is the JSON representation of a TV show with its seasons.
type TVShow struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ReleaseYear int       `json:"release_year"`
	Rating      *float64  `json:"rating"`
	Poster      *string   `json:"poster"`
	Backdrop    *string   `json:"backdrop"`
	TrailerURL  *string   `json:"trailer_url"`
	Genres      []Genre   `json:"genres"`
	Seasons     []Season  `json:"seasons"`
	IsFeatured  bool      `json:"is_featured"`
	IsNew       bool      `json:"is_new"`
	IsTrending  bool      `json:"is_trending"`
	Director    string    `json:"director"`
	Cast        string    `json:"cast"`
	CreatedAt   time.Time `json:"created_at"`
}

// LiveStream is the JSON representation of a live stream.
type LiveStream struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoFile   *string   `json:"video_file"`
	Poster      *string   `json:"poster"`
	Backdrop    *string   `json:"backdrop"`
	Genres      []Genre   `json:"genres"`
	IsLive      bool      `json:"is_live"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
}

// SearchResult is a single entry of the unified search.
type SearchResult struct {
	ID     uint    `json:"id"`
	Title  string  `json:"title"`
	Poster *string `json:"poster"`
	Type   string  `json:"type"`
}

// SearchResponse wraps the unified search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}
