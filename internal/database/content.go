package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	_ ContentStore[Movie]      = (*contentStore[Movie])(nil)
	_ ContentStore[TVShow]     = (*contentStore[TVShow])(nil)
	_ ContentStore[BongoMovie] = (*contentStore[BongoMovie])(nil)
	_ ContentStore[LiveStream] = (*contentStore[LiveStream])(nil)
)

// contentStore implements ContentStore for any kind described by a KindSpec.
type contentStore[T Content] struct {
	db   *gorm.DB
	spec *KindSpec
}

func (s *contentStore[T]) Spec() *KindSpec {
	return s.spec
}

func (s *contentStore[T]) List(ctx context.Context, f Filter) ([]T, error) {
	tx, err := f.apply(s.spec.preload(s.db.WithContext(ctx).Model(new(T))), s.spec)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0)
	if err := tx.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		log.Error("failed to list content", "kind", s.spec.Kind, "error", err)
		return nil, err
	}
	return items, nil
}

func (s *contentStore[T]) Get(ctx context.Context, id uint) (*T, error) {
	var item T
	if err := s.spec.preload(s.db.WithContext(ctx)).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %d: %w", s.spec.Kind, id, ErrNotFound)
		}
		log.Error("failed to get content by ID", "kind", s.spec.Kind, "id", id, "error", err)
		return nil, err
	}
	return &item, nil
}

func (s *contentStore[T]) Create(ctx context.Context, item *T) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		log.Error("failed to create content", "kind", s.spec.Kind, "error", err)
		return err
	}
	return nil
}

// Delete removes the genre links first since they are not owned by the record.
// Owned children go through ON DELETE CASCADE.
func (s *contentStore[T]) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM ? WHERE content_id = ?", clause.Table{Name: s.spec.GenreTable}, id).Error; err != nil {
			log.Error("failed to unlink genres", "kind", s.spec.Kind, "id", id, "error", err)
			return err
		}
		result := tx.Delete(new(T), id)
		if result.Error != nil {
			log.Error("failed to delete content", "kind", s.spec.Kind, "id", id, "error", result.Error)
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%s %d: %w", s.spec.Kind, id, ErrNotFound)
		}
		return nil
	})
}
