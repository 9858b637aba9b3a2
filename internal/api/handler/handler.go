package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/cinetro/internal/api/models"
	"github.com/jon4hz/cinetro/internal/catalog"
	"github.com/jon4hz/cinetro/internal/config"
	"github.com/jon4hz/cinetro/internal/contact"
	"github.com/jon4hz/cinetro/internal/database"
)

// ContactSuccessMessage is returned when a contact submission was stored and mailed.
const ContactSuccessMessage = "Your message has been sent successfully!"

type Handler struct {
	catalog *catalog.Service
	contact *contact.Service
	db      database.DB
	config  *config.Config
}

func New(cat *catalog.Service, contactSvc *contact.Service, db database.DB, cfg *config.Config) *Handler {
	return &Handler{
		catalog: cat,
		contact: contactSvc,
		db:      db,
		config:  cfg,
	}
}

// ContentHandlers are the list, featured and detail endpoints of one content kind.
type ContentHandlers struct {
	List     gin.HandlerFunc
	Featured gin.HandlerFunc
	Detail   gin.HandlerFunc
}

func (h *Handler) Movies() ContentHandlers {
	return newContentHandlers(h, h.catalog.Movies(), models.ToMovie, models.ToMovies)
}

func (h *Handler) TVShows() ContentHandlers {
	return newContentHandlers(h, h.catalog.TVShows(), models.ToTVShow, models.ToTVShows)
}

func (h *Handler) BongoMovies() ContentHandlers {
	return newContentHandlers(h, h.catalog.BongoMovies(), models.ToBongoMovie, models.ToBongoMovies)
}

func (h *Handler) LiveStreams() ContentHandlers {
	return newContentHandlers(h, h.catalog.LiveStreams(), models.ToLiveStream, models.ToLiveStreams)
}

func newContentHandlers[T database.Content, R any](
	h *Handler,
	col catalog.Collection[T],
	one func(T, models.AssetResolver) R,
	many func([]T, models.AssetResolver) []R,
) ContentHandlers {
	spec := col.Spec()

	return ContentHandlers{
		List: func(c *gin.Context) {
			filter, err := parseFilter(c, spec)
			if err != nil {
				var ferr *FilterError
				if errors.As(err, &ferr) {
					c.JSON(http.StatusBadRequest, ferr.Fields)
					return
				}
				internalError(c, "Failed to parse filter", err)
				return
			}
			unknown, err := h.catalog.UnknownGenres(c.Request.Context(), filter.GenreIDs)
			if err != nil {
				internalError(c, "Failed to check genres", err)
				return
			}
			if len(unknown) > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"genres": []string{invalidChoice(strconv.FormatUint(uint64(unknown[0]), 10))}})
				return
			}
			items, err := col.List(c.Request.Context(), filter)
			if err != nil {
				internalError(c, "Failed to list content", err)
				return
			}
			c.JSON(http.StatusOK, many(items, h.assets(c)))
		},
		Featured: func(c *gin.Context) {
			items, err := col.Featured(c.Request.Context())
			if err != nil {
				internalError(c, "Failed to list featured content", err)
				return
			}
			c.JSON(http.StatusOK, many(items, h.assets(c)))
		},
		Detail: func(c *gin.Context) {
			id, err := parseUintParam(c.Param("id"))
			if err != nil {
				notFound(c)
				return
			}
			item, err := col.Detail(c.Request.Context(), id)
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					notFound(c)
					return
				}
				internalError(c, "Failed to get content", err)
				return
			}
			c.JSON(http.StatusOK, one(*item, h.assets(c)))
		},
	}
}

// TrendingTVShows lists the TV shows flagged as trending.
func (h *Handler) TrendingTVShows(c *gin.Context) {
	shows, err := h.catalog.Trending(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to list trending tv shows", err)
		return
	}
	c.JSON(http.StatusOK, models.ToTVShows(shows, h.assets(c)))
}

func (h *Handler) Genres(c *gin.Context) {
	genres, err := h.catalog.Genres(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to list genres", err)
		return
	}
	c.JSON(http.StatusOK, models.ToGenres(genres))
}

func (h *Handler) Season(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		notFound(c)
		return
	}
	season, err := h.catalog.Season(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			notFound(c)
			return
		}
		internalError(c, "Failed to get season", err)
		return
	}
	c.JSON(http.StatusOK, models.ToSeason(*season))
}

func (h *Handler) Search(c *gin.Context) {
	hits, err := h.catalog.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		internalError(c, "Failed to search", err)
		return
	}
	c.JSON(http.StatusOK, models.ToSearchResponse(hits, h.assets(c)))
}

func (h *Handler) Contact(c *gin.Context) {
	var sub contact.Submission
	if err := c.ShouldBind(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	_, err := h.contact.Submit(c.Request.Context(), sub)
	if err != nil {
		var verr *contact.ValidationError
		var derr *contact.DeliveryError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, verr.Fields)
		case errors.As(err, &derr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": derr.Error()})
		default:
			internalError(c, "Failed to submit contact message", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": ContactSuccessMessage})
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		log.Error("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// assets returns the asset resolver bound to the origin of the current request.
func (h *Handler) assets(c *gin.Context) models.AssetResolver {
	return models.AssetResolver{
		Origin:   requestOrigin(c, h.config.ServerURL),
		MediaURL: h.config.Media.URL,
	}
}

// requestOrigin returns the scheme and host the client used to reach the server.
// A configured server URL takes precedence.
func requestOrigin(c *gin.Context, serverURL string) string {
	if serverURL != "" {
		return serverURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme, _, _ = strings.Cut(proto, ",")
		scheme = strings.ToLower(strings.TrimSpace(scheme))
	}
	return scheme + "://" + c.Request.Host
}

// FilterError lists the rejected query parameters of a list request
// with one message per parameter.
type FilterError struct {
	Fields map[string][]string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter: %v", e.Fields)
}

func (e *FilterError) add(param, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	if _, ok := e.Fields[param]; !ok {
		e.Fields[param] = []string{msg}
	}
}

func invalidChoice(value string) string {
	return fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", value)
}

// parseFilter reads the genre, flag and search query parameters of a list request.
// Invalid values are reported as a *FilterError.
func parseFilter(c *gin.Context, spec *database.KindSpec) (database.Filter, error) {
	var filter database.Filter
	ferr := &FilterError{}

	for _, raw := range c.QueryArray("genres") {
		for part := range strings.SplitSeq(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			id, err := parseUintParam(part)
			if err != nil {
				ferr.add("genres", fmt.Sprintf("\u201c%s\u201d is not a valid value.", part))
				continue
			}
			filter.GenreIDs = append(filter.GenreIDs, id)
		}
	}

	for _, flag := range spec.FlagColumns {
		raw := strings.TrimSpace(c.Query(flag))
		if raw == "" {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			ferr.add(flag, invalidChoice(raw))
			continue
		}
		if filter.Flags == nil {
			filter.Flags = make(map[string]bool)
		}
		filter.Flags[flag] = value
	}

	if ferr.Fields != nil {
		return filter, ferr
	}

	filter.Search = c.Query("search")
	return filter, nil
}

func parseUintParam(param string) (uint, error) {
	var id uint64
	var err error
	if id, err = strconv.ParseUint(param, 10, 0); err != nil {
		return 0, err
	}
	return uint(id), nil
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func internalError(c *gin.Context, msg string, err error) {
	log.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
