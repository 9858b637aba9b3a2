package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	counts := []struct {
		model any
		dst   *int64
	}{
		{&Genre{}, &stats.Genres},
		{&Movie{}, &stats.Movies},
		{&BongoMovie{}, &stats.BongoMovies},
		{&TVShow{}, &stats.TVShows},
		{&Season{}, &stats.Seasons},
		{&Episode{}, &stats.Episodes},
		{&DownloadLink{}, &stats.DownloadLinks},
		{&LiveStream{}, &stats.LiveStreams},
		{&ContactMessage{}, &stats.ContactMessages},
	}
	for _, cnt := range counts {
		if err := c.db.WithContext(ctx).Model(cnt.model).Count(cnt.dst).Error; err != nil {
			log.Error("failed to count records", "error", err)
			return nil, err
		}
	}

	for _, spec := range Specs {
		var last struct{ UpdatedAt time.Time }
		err := c.db.WithContext(ctx).Table(spec.Table).
			Select("updated_at").
			Order("updated_at DESC").
			Limit(1).
			Scan(&last).Error
		if err != nil {
			log.Error("failed to get last update", "kind", spec.Kind, "error", err)
			return nil, err
		}
		if !last.UpdatedAt.IsZero() && (stats.LastUpdated == nil || last.UpdatedAt.After(*stats.LastUpdated)) {
			stats.LastUpdated = &last.UpdatedAt
		}
	}

	return &stats, nil
}

// Total returns the number of content records of all kinds.
func (s *Stats) Total() int64 {
	return s.Movies + s.BongoMovies + s.TVShows + s.LiveStreams
}
