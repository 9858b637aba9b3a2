package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

func (c *Client) ListGenres(ctx context.Context) ([]Genre, error) {
	genres := make([]Genre, 0)
	if err := c.db.WithContext(ctx).Order("id").Find(&genres).Error; err != nil {
		log.Error("failed to list genres", "error", err)
		return nil, err
	}
	return genres, nil
}

func (c *Client) GetOrCreateGenre(ctx context.Context, name string) (*Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("genre name is required")
	}
	genre := Genre{Name: name}
	if err := c.db.WithContext(ctx).Where(Genre{Name: name}).FirstOrCreate(&genre).Error; err != nil {
		log.Error("failed to get or create genre", "name", name, "error", err)
		return nil, err
	}
	return &genre, nil
}

func (c *Client) GetSeason(ctx context.Context, id uint) (*Season, error) {
	var season Season
	err := c.db.WithContext(ctx).
		Preload("Episodes", func(tx *gorm.DB) *gorm.DB { return tx.Order("episode_number") }).
		Preload("Episodes.DownloadLinks", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		First(&season, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("season %d: %w", id, ErrNotFound)
		}
		log.Error("failed to get season by ID", "id", id, "error", err)
		return nil, err
	}
	return &season, nil
}

func (c *Client) CreateContactMessage(ctx context.Context, msg *ContactMessage) error {
	if err := c.db.WithContext(ctx).Create(msg).Error; err != nil {
		log.Error("failed to create contact message", "error", err)
		return err
	}
	return nil
}
