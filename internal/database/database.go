package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/glebarez/sqlite"
	"github.com/jon4hz/cinetro/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB

	movies      *contentStore[Movie]
	tvShows     *contentStore[TVShow]
	bongoMovies *contentStore[BongoMovie]
	liveStreams *contentStore[LiveStream]
}

// New creates a new database connection and performs migrations.
func New(cfg *config.DatabaseConfig, debug bool) (*Client, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger(debug),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	if cfg.Driver == config.DatabaseDriverSQLite {
		// sqlite only allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	c := newClient(db)
	if err := c.Migrate(); err != nil {
		return nil, err
	}

	log.Debug("database ready", "driver", cfg.Driver)
	return c, nil
}

func newClient(db *gorm.DB) *Client {
	return &Client{
		db:          db,
		movies:      &contentStore[Movie]{db: db, spec: MovieSpec},
		tvShows:     &contentStore[TVShow]{db: db, spec: TVShowSpec},
		bongoMovies: &contentStore[BongoMovie]{db: db, spec: BongoMovieSpec},
		liveStreams: &contentStore[LiveStream]{db: db, spec: LiveStreamSpec},
	}
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	if cfg == nil {
		return nil, fmt.Errorf("missing database config")
	}
	switch cfg.Driver {
	case config.DatabaseDriverSQLite, "":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.Open(cfg.Path + "?_pragma=foreign_keys(1)"), nil
	case config.DatabaseDriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case config.DatabaseDriverMySQL:
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates or updates the schema.
func (c *Client) Migrate() error {
	if err := c.db.AutoMigrate(
		&Genre{},
		&Movie{},
		&BongoMovie{},
		&TVShow{},
		&Season{},
		&Episode{},
		&DownloadLink{},
		&LiveStream{},
		&ContactMessage{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *Client) Movies() ContentStore[Movie]           { return c.movies }
func (c *Client) TVShows() ContentStore[TVShow]         { return c.tvShows }
func (c *Client) BongoMovies() ContentStore[BongoMovie] { return c.bongoMovies }
func (c *Client) LiveStreams() ContentStore[LiveStream] { return c.liveStreams }
