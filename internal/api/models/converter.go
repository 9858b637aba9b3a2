package models

import (
	"net/url"
	"strings"

	"github.com/jon4hz/cinetro/internal/catalog"
	"github.com/jon4hz/cinetro/internal/database"
	"github.com/samber/lo"
)

// AssetResolver turns stored media references into the URLs handed to clients.
type AssetResolver struct {
	// Origin is the scheme and host of the current request, e.g. https://cinetro.example.com.
	Origin string
	// MediaURL is the prefix under which local media files are served.
	MediaURL string
}

// Resolve returns the absolute URL of the local file when one is stored,
// otherwise the external URL as is. The result is nil when neither is set.
func (r AssetResolver) Resolve(local string, external *string) *string {
	if local != "" {
		u := &url.URL{Path: r.MediaURL + strings.TrimPrefix(local, "/")}
		return lo.ToPtr(r.Origin + u.EscapedPath())
	}
	return external
}

// File resolves a local file that has no external fallback.
func (r AssetResolver) File(local string) *string {
	return r.Resolve(local, nil)
}

func (r AssetResolver) poster(a database.Artwork) *string {
	return r.Resolve(a.PosterImage, a.PosterURL)
}

func (r AssetResolver) backdrop(a database.Artwork) *string {
	return r.Resolve(a.BackdropImage, a.BackdropURL)
}

// ToGenre converts a database.Genre to Genre.
func ToGenre(g database.Genre) Genre {
	return Genre{ID: g.ID, Name: g.Name}
}

// ToGenres converts a slice of database.Genre to Genres.
func ToGenres(genres []database.Genre) []Genre {
	return lo.Map(genres, func(g database.Genre, _ int) Genre { return ToGenre(g) })
}

// ToDownloadLink converts a database.DownloadLink to DownloadLink.
func ToDownloadLink(l database.DownloadLink) DownloadLink {
	return DownloadLink{
		ID:             l.ID,
		Quality:        string(l.Quality),
		QualityDisplay: l.Quality.Label(),
		URL:            l.URL,
		Source:         l.Source,
	}
}

// ToEpisode converts a database.Episode to Episode.
func ToEpisode(e database.Episode) Episode {
	return Episode{
		ID:            e.ID,
		EpisodeNumber: e.EpisodeNumber,
		Title:         e.Title,
		DownloadLinks: lo.Map(e.DownloadLinks, func(l database.DownloadLink, _ int) DownloadLink { return ToDownloadLink(l) }),
	}
}

// ToSeason converts a database.Season to Season.
func ToSeason(s database.Season) Season {
	return Season{
		ID:           s.ID,
		SeasonNumber: s.SeasonNumber,
		EpisodeCount: s.EpisodeCount,
		Episodes:     lo.Map(s.Episodes, func(e database.Episode, _ int) Episode { return ToEpisode(e) }),
	}
}

func toFilm(r AssetResolver, rec database.Record, f database.FilmDetails, a database.Artwork, genres []database.Genre) Film {
	return Film{
		ID:          rec.ID,
		Title:       f.Title,
		Description: f.Description,
		ReleaseYear: f.ReleaseYear,
		Rating:      f.Rating,
		Poster:      r.poster(a),
		Backdrop:    r.backdrop(a),
		TrailerURL:  f.TrailerURL,
		DownloadURL: f.DownloadURL,
		Duration:    f.Duration,
		Genres:      ToGenres(genres),
		Is4K:        f.Is4K,
		IsNew:       f.IsNew,
		IsFeatured:  f.IsFeatured,
		Director:    f.Director,
		Cast:        f.Cast,
		CreatedAt:   rec.CreatedAt,
	}
}

// ToMovie converts a database.Movie to Film.
func ToMovie(m database.Movie, r AssetResolver) Film {
	return toFilm(r, m.Record, m.FilmDetails, m.Artwork, m.Genres)
}

// ToMovies converts a slice of database.Movie to Films.
func ToMovies(items []database.Movie, r AssetResolver) []Film {
	return lo.Map(items, func(m database.Movie, _ int) Film { return ToMovie(m, r) })
}

// ToBongoMovie converts a database.BongoMovie to Film.
func ToBongoMovie(m database.BongoMovie, r AssetResolver) Film {
	return toFilm(r, m.Record, m.FilmDetails, m.Artwork, m.Genres)
}

// ToBongoMovies converts a slice of database.BongoMovie to Films.
func ToBongoMovies(items []database.BongoMovie, r AssetResolver) []Film {
	return lo.Map(items, func(m database.BongoMovie, _ int) Film { return ToBongoMovie(m, r) })
}

// ToTVShow converts a database.TVShow to TVShow, including its seasons.
func ToTVShow(s database.TVShow, r AssetResolver) TVShow {
	return TVShow{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		ReleaseYear: s.ReleaseYear,
		Rating:      s.Rating,
		Poster:      r.poster(s.Artwork),
		Backdrop:    r.backdrop(s.Artwork),
		TrailerURL:  s.TrailerURL,
		Genres:      ToGenres(s.Genres),
		Seasons:     lo.Map(s.Seasons, func(season database.Season, _ int) Season { return ToSeason(season) }),
		IsFeatured:  s.IsFeatured,
		IsNew:       s.IsNew,
		IsTrending:  s.IsTrending,
		Director:    s.Director,
		Cast:        s.Cast,
		CreatedAt:   s.CreatedAt,
	}
}

// ToTVShows converts a slice of database.TVShow to TVShows.
func ToTVShows(items []database.TVShow, r AssetResolver) []TVShow {
	return lo.Map(items, func(s database.TVShow, _ int) TVShow { return ToTVShow(s, r) })
}

// ToLiveStream converts a database.LiveStream to LiveStream.
func ToLiveStream(l database.LiveStream, r AssetResolver) LiveStream {
	return LiveStream{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		VideoFile:   r.File(l.VideoFile),
		Poster:      r.poster(l.Artwork),
		Backdrop:    r.backdrop(l.Artwork),
		Genres:      ToGenres(l.Genres),
		IsLive:      l.IsLive,
		IsFeatured:  l.IsFeatured,
		CreatedAt:   l.CreatedAt,
	}
}

// ToLiveStreams converts a slice of database.LiveStream to LiveStreams.
func ToLiveStreams(items []database.LiveStream, r AssetResolver) []LiveStream {
	return lo.Map(items, func(l database.LiveStream, _ int) LiveStream { return ToLiveStream(l, r) })
}

// ToSearchResponse converts catalog search hits to a SearchResponse.
func ToSearchResponse(hits []catalog.Hit, r AssetResolver) SearchResponse {
	return SearchResponse{
		Results: lo.Map(hits, func(h catalog.Hit, _ int) SearchResult {
			return SearchResult{
				ID:     h.ID,
				Title:  h.Title,
				Poster: r.poster(h.Artwork),
				Type:   string(h.Kind),
			}
		}),
	}
}
