package database

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jon4hz/cinetro/internal/config"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type DatabaseTestSuite struct {
	suite.Suite
	ctx    context.Context
	client *Client
	base   time.Time

	action, drama, comedy *Genre
}

func TestDatabaseTestSuite(t *testing.T) {
	suite.Run(t, new(DatabaseTestSuite))
}

func (s *DatabaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	client, err := New(&config.DatabaseConfig{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(s.T().TempDir(), "cinetro.db"),
	}, false)
	s.Require().NoError(err)
	s.client = client
	s.T().Cleanup(func() { _ = client.Close() })

	s.action = s.genre("Action")
	s.drama = s.genre("Drama")
	s.comedy = s.genre("Comedy")
}

func (s *DatabaseTestSuite) genre(name string) *Genre {
	g, err := s.client.GetOrCreateGenre(s.ctx, name)
	s.Require().NoError(err)
	return g
}

func (s *DatabaseTestSuite) at(hours int) Record {
	return Record{CreatedAt: s.base.Add(time.Duration(hours) * time.Hour)}
}

func (s *DatabaseTestSuite) movie(title string, hours int, mutate func(*Movie)) *Movie {
	m := &Movie{
		Record:      s.at(hours),
		FilmDetails: FilmDetails{Title: title, ReleaseYear: 2020},
	}
	if mutate != nil {
		mutate(m)
	}
	s.Require().NoError(s.client.Movies().Create(s.ctx, m))
	return m
}

func titles[T Content](items []T) []string {
	return lo.Map(items, func(item T, _ int) string { return item.Summary().Title })
}

func (s *DatabaseTestSuite) TestListMovies_NewestFirst() {
	s.movie("Old", 1, nil)
	s.movie("Newest", 3, nil)
	s.movie("Middle", 2, nil)

	movies, err := s.client.Movies().List(s.ctx, Filter{})
	s.Require().NoError(err)
	s.Equal([]string{"Newest", "Middle", "Old"}, titles(movies))
}

func (s *DatabaseTestSuite) TestListMovies_Empty() {
	movies, err := s.client.Movies().List(s.ctx, Filter{})
	s.Require().NoError(err)
	s.NotNil(movies)
	s.Empty(movies)
}

func (s *DatabaseTestSuite) TestListMovies_FlagFilterIsSubset() {
	s.movie("Featured 4K", 1, func(m *Movie) { m.IsFeatured = true; m.Is4K = true })
	s.movie("Featured", 2, func(m *Movie) { m.IsFeatured = true })
	s.movie("Plain", 3, nil)

	all, err := s.client.Movies().List(s.ctx, Filter{})
	s.Require().NoError(err)

	featured, err := s.client.Movies().List(s.ctx, Filter{Flags: map[string]bool{FlagFeatured: true}})
	s.Require().NoError(err)
	s.Equal([]string{"Featured", "Featured 4K"}, titles(featured))
	for _, m := range featured {
		s.True(m.IsFeatured)
	}
	s.Subset(titles(all), titles(featured))

	uhd, err := s.client.Movies().List(s.ctx, Filter{Flags: map[string]bool{FlagFeatured: true, Flag4K: true}})
	s.Require().NoError(err)
	s.Equal([]string{"Featured 4K"}, titles(uhd))

	notFeatured, err := s.client.Movies().List(s.ctx, Filter{Flags: map[string]bool{FlagFeatured: false}})
	s.Require().NoError(err)
	s.Equal([]string{"Plain"}, titles(notFeatured))
}

func (s *DatabaseTestSuite) TestListMovies_GenreFilter() {
	s.movie("Explosions", 1, func(m *Movie) { m.Genres = []Genre{*s.action} })
	s.movie("Tears", 2, func(m *Movie) { m.Genres = []Genre{*s.drama} })
	s.movie("Both", 3, func(m *Movie) { m.Genres = []Genre{*s.action, *s.drama} })

	action, err := s.client.Movies().List(s.ctx, Filter{GenreIDs: []uint{s.action.ID}})
	s.Require().NoError(err)
	s.Equal([]string{"Both", "Explosions"}, titles(action))

	either, err := s.client.Movies().List(s.ctx, Filter{GenreIDs: []uint{s.action.ID, s.drama.ID}})
	s.Require().NoError(err)
	s.Equal([]string{"Both", "Tears", "Explosions"}, titles(either))

	none, err := s.client.Movies().List(s.ctx, Filter{GenreIDs: []uint{s.comedy.ID}})
	s.Require().NoError(err)
	s.Empty(none)

	s.Require().Len(action, 2)
	s.Equal([]string{"Action", "Drama"}, lo.Map(action[0].Genres, func(g Genre, _ int) string { return g.Name }))
}

func (s *DatabaseTestSuite) TestListMovies_Search() {
	s.movie("The Matrix", 1, func(m *Movie) { m.Director = "Lana Wachowski" })
	s.movie("John Wick", 2, func(m *Movie) { m.Cast = "Keanu Reeves, Ian McShane" })
	s.movie("Up", 3, func(m *Movie) { m.Description = "keanu is mentioned only here" })

	byTitle, err := s.client.Movies().List(s.ctx, Filter{Search: "MATRIX"})
	s.Require().NoError(err)
	s.Equal([]string{"The Matrix"}, titles(byTitle))

	byDirector, err := s.client.Movies().List(s.ctx, Filter{Search: "wachowski"})
	s.Require().NoError(err)
	s.Equal([]string{"The Matrix"}, titles(byDirector))

	byCast, err := s.client.Movies().List(s.ctx, Filter{Search: "keanu"})
	s.Require().NoError(err)
	s.Equal([]string{"John Wick"}, titles(byCast), "description is not searched for movies")

	none, err := s.client.Movies().List(s.ctx, Filter{Search: "zzz"})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *DatabaseTestSuite) TestListMovies_SearchEveryWord() {
	s.movie("Cast Away", 1, func(m *Movie) { m.Cast = "Hanks, Tom" })
	s.movie("Big", 2, func(m *Movie) {
		m.Cast = "Tom Hanks"
		m.Director = "Penny Marshall"
	})
	s.movie("Top Gun", 3, func(m *Movie) { m.Cast = "Tom Cruise" })

	reordered, err := s.client.Movies().List(s.ctx, Filter{Search: "tom hanks"})
	s.Require().NoError(err)
	s.Equal([]string{"Big", "Cast Away"}, titles(reordered))

	acrossColumns, err := s.client.Movies().List(s.ctx, Filter{Search: "cast, hanks"})
	s.Require().NoError(err)
	s.Equal([]string{"Cast Away"}, titles(acrossColumns))

	titleAndDirector, err := s.client.Movies().List(s.ctx, Filter{Search: "marshall big"})
	s.Require().NoError(err)
	s.Equal([]string{"Big"}, titles(titleAndDirector))

	oneWordMissing, err := s.client.Movies().List(s.ctx, Filter{Search: "tom zzz"})
	s.Require().NoError(err)
	s.Empty(oneWordMissing)
}

func (s *DatabaseTestSuite) TestListMovies_PhraseIsWhole() {
	s.movie("Cast Away", 1, func(m *Movie) { m.Cast = "Hanks, Tom" })

	swapped, err := s.client.Movies().List(s.ctx, Filter{Phrase: "tom hanks"})
	s.Require().NoError(err)
	s.Empty(swapped)

	exact, err := s.client.Movies().List(s.ctx, Filter{Phrase: "HANKS, T"})
	s.Require().NoError(err)
	s.Equal([]string{"Cast Away"}, titles(exact))
}

func (s *DatabaseTestSuite) TestListMovies_SearchWildcardsAreLiteral() {
	s.movie("100% Wolf", 1, nil)
	s.movie("1000 Wolves", 2, nil)
	s.movie("snake_case", 3, nil)
	s.movie("snakecase", 4, nil)

	percent, err := s.client.Movies().List(s.ctx, Filter{Search: "100%"})
	s.Require().NoError(err)
	s.Equal([]string{"100% Wolf"}, titles(percent))

	underscore, err := s.client.Movies().List(s.ctx, Filter{Search: "e_c"})
	s.Require().NoError(err)
	s.Equal([]string{"snake_case"}, titles(underscore))
}

func (s *DatabaseTestSuite) TestListLiveStreams_SearchesDescription() {
	s.Require().NoError(s.client.LiveStreams().Create(s.ctx, &LiveStream{
		Record:      s.at(1),
		Title:       "Derby",
		Description: "Simba vs Yanga live from Dar es Salaam",
		IsLive:      true,
	}))

	streams, err := s.client.LiveStreams().List(s.ctx, Filter{Search: "yanga"})
	s.Require().NoError(err)
	s.Equal([]string{"Derby"}, titles(streams))

	live, err := s.client.LiveStreams().List(s.ctx, Filter{Flags: map[string]bool{FlagLive: true}})
	s.Require().NoError(err)
	s.Len(live, 1)
}

func (s *DatabaseTestSuite) TestList_UnknownFlag() {
	_, err := s.client.LiveStreams().List(s.ctx, Filter{Flags: map[string]bool{FlagNew: true}})
	s.ErrorIs(err, ErrUnknownFilter)

	_, err = s.client.Movies().List(s.ctx, Filter{Flags: map[string]bool{FlagTrending: true}})
	s.ErrorIs(err, ErrUnknownFilter)
}

func (s *DatabaseTestSuite) TestGet_NotFoundForEveryKind() {
	_, err := s.client.Movies().Get(s.ctx, 999)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.client.TVShows().Get(s.ctx, 999)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.client.BongoMovies().Get(s.ctx, 999)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.client.LiveStreams().Get(s.ctx, 999)
	s.ErrorIs(err, ErrNotFound)
	_, err = s.client.GetSeason(s.ctx, 999)
	s.ErrorIs(err, ErrNotFound)
}

func (s *DatabaseTestSuite) createShow() *TVShow {
	show := &TVShow{
		Record:     s.at(1),
		Title:      "Kampuni",
		IsTrending: true,
		Genres:     []Genre{*s.drama},
		Seasons: []Season{
			{SeasonNumber: 2, EpisodeCount: 8, Episodes: []Episode{
				{EpisodeNumber: 1, Title: lo.ToPtr("Return")},
			}},
			{SeasonNumber: 1, Episodes: []Episode{
				{EpisodeNumber: 2, DownloadLinks: []DownloadLink{
					{Quality: QualitySD, URL: "https://dl.example.com/s1e2-sd"},
				}},
				{EpisodeNumber: 1, DownloadLinks: []DownloadLink{
					{Quality: Quality4K, URL: "https://dl.example.com/s1e1-4k", Source: lo.ToPtr("mirror")},
					{Quality: QualityHD, URL: "https://dl.example.com/s1e1-hd"},
				}},
			}},
		},
	}
	s.Require().NoError(s.client.TVShows().Create(s.ctx, show))
	return show
}

func (s *DatabaseTestSuite) TestGetTVShow_ResolvesOrderedTree() {
	created := s.createShow()

	show, err := s.client.TVShows().Get(s.ctx, created.ID)
	s.Require().NoError(err)

	s.Require().Len(show.Genres, 1)
	s.Equal("Drama", show.Genres[0].Name)

	s.Require().Len(show.Seasons, 2)
	s.Equal(1, show.Seasons[0].SeasonNumber)
	s.Equal(1, show.Seasons[0].EpisodeCount, "episode count defaults to 1")
	s.Equal(2, show.Seasons[1].SeasonNumber)
	s.Equal(8, show.Seasons[1].EpisodeCount)

	episodes := show.Seasons[0].Episodes
	s.Require().Len(episodes, 2)
	s.Equal(1, episodes[0].EpisodeNumber)
	s.Equal(2, episodes[1].EpisodeNumber)
	s.Require().Len(episodes[0].DownloadLinks, 2)
	s.Equal(Quality4K, episodes[0].DownloadLinks[0].Quality)
	s.Equal("mirror", *episodes[0].DownloadLinks[0].Source)

	season, err := s.client.GetSeason(s.ctx, show.Seasons[0].ID)
	s.Require().NoError(err)
	s.Require().Len(season.Episodes, 2)
	s.Equal(1, season.Episodes[0].EpisodeNumber)
}

func (s *DatabaseTestSuite) TestListTVShows_Trending() {
	s.createShow()
	s.Require().NoError(s.client.TVShows().Create(s.ctx, &TVShow{Record: s.at(2), Title: "Quiet"}))

	trending, err := s.client.TVShows().List(s.ctx, Filter{Flags: map[string]bool{FlagTrending: true}})
	s.Require().NoError(err)
	s.Equal([]string{"Kampuni"}, titles(trending))
	s.Require().Len(trending[0].Seasons, 2)
}

func (s *DatabaseTestSuite) TestDeleteTVShow_Cascades() {
	show := s.createShow()

	s.Require().NoError(s.client.TVShows().Delete(s.ctx, show.ID))

	stats, err := s.client.GetStats(s.ctx)
	s.Require().NoError(err)
	s.Zero(stats.TVShows)
	s.Zero(stats.Seasons)
	s.Zero(stats.Episodes)
	s.Zero(stats.DownloadLinks)
	s.EqualValues(3, stats.Genres, "genres are not owned by the show")

	s.ErrorIs(s.client.TVShows().Delete(s.ctx, show.ID), ErrNotFound)
}

func (s *DatabaseTestSuite) TestRatingBounds() {
	tests := []struct {
		name   string
		create func(rating *float64) error
	}{
		{"movie", func(r *float64) error {
			return s.client.Movies().Create(s.ctx, &Movie{FilmDetails: FilmDetails{Title: "m", Rating: r}})
		}},
		{"bongo movie", func(r *float64) error {
			return s.client.BongoMovies().Create(s.ctx, &BongoMovie{FilmDetails: FilmDetails{Title: "b", Rating: r}})
		}},
		{"tv show", func(r *float64) error {
			return s.client.TVShows().Create(s.ctx, &TVShow{Title: "t", Rating: r})
		}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.ErrorIs(tt.create(lo.ToPtr(10.5)), ErrInvalidRating)
			s.ErrorIs(tt.create(lo.ToPtr(-0.1)), ErrInvalidRating)
			s.ErrorIs(tt.create(lo.ToPtr(math.NaN())), ErrInvalidRating)
			s.ErrorIs(tt.create(lo.ToPtr(math.Inf(1))), ErrInvalidRating)
			s.NoError(tt.create(lo.ToPtr(0.0)))
			s.NoError(tt.create(lo.ToPtr(10.0)))
			s.NoError(tt.create(nil))
		})
	}
}

func (s *DatabaseTestSuite) TestChildValidation() {
	err := s.client.TVShows().Create(s.ctx, &TVShow{Title: "bad season", Seasons: []Season{{SeasonNumber: 0}}})
	s.ErrorIs(err, ErrInvalidNumber)

	err = s.client.TVShows().Create(s.ctx, &TVShow{Title: "bad link", Seasons: []Season{{
		SeasonNumber: 1,
		Episodes: []Episode{{EpisodeNumber: 1, DownloadLinks: []DownloadLink{
			{Quality: "8K", URL: "https://dl.example.com"},
		}}},
	}}})
	s.ErrorIs(err, ErrInvalidQuality)
}

func (s *DatabaseTestSuite) TestGetOrCreateGenre_Idempotent() {
	again := s.genre("Action")
	s.Equal(s.action.ID, again.ID)

	genres, err := s.client.ListGenres(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Action", "Drama", "Comedy"}, lo.Map(genres, func(g Genre, _ int) string { return g.Name }))

	_, err = s.client.GetOrCreateGenre(s.ctx, "  ")
	s.Error(err)
}

func (s *DatabaseTestSuite) TestCreateContactMessage() {
	msg := &ContactMessage{Name: "Ada", Email: "ada@x.com", Message: "Hi"}
	s.Require().NoError(s.client.CreateContactMessage(s.ctx, msg))
	s.NotZero(msg.ID)
	s.False(msg.CreatedAt.IsZero())

	stats, err := s.client.GetStats(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, stats.ContactMessages)
}

func (s *DatabaseTestSuite) TestGetStats() {
	stats, err := s.client.GetStats(s.ctx)
	s.Require().NoError(err)
	s.Nil(stats.LastUpdated)

	s.movie("A", 1, nil)
	s.createShow()

	stats, err = s.client.GetStats(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, stats.Movies)
	s.EqualValues(1, stats.TVShows)
	s.EqualValues(2, stats.Seasons)
	s.EqualValues(3, stats.Episodes)
	s.EqualValues(3, stats.DownloadLinks)
	s.EqualValues(2, stats.Total())
	s.NotNil(stats.LastUpdated)
	s.NoError(s.client.Ping(s.ctx))
}

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})
	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger(false)})
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return newClient(db), mock
}

func TestStoreErrorsPropagate(t *testing.T) {
	client, mock := newMockClient(t)
	boom := errors.New("connection refused")

	mock.ExpectQuery(`SELECT \* FROM "movies"`).WillReturnError(boom)
	_, err := client.Movies().List(context.Background(), Filter{})
	require.ErrorIs(t, err, boom)

	mock.ExpectQuery(`SELECT \* FROM "live_streams"`).WillReturnError(boom)
	_, err = client.LiveStreams().Get(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery(`SELECT \* FROM "genres"`).WillReturnError(boom)
	_, err = client.ListGenres(context.Background())
	require.ErrorIs(t, err, boom)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSearchQuery(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT \* FROM "live_streams" WHERE \(LOWER\("title"\) LIKE \$1 ESCAPE '!' OR LOWER\("description"\) LIKE \$2 ESCAPE '!'\) ORDER BY created_at DESC,id DESC`).
		WithArgs("%50!%%", "%50!%%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	streams, err := client.LiveStreams().List(context.Background(), Filter{Search: " 50% "})
	require.NoError(t, err)
	assert.Empty(t, streams)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSearchQuery_EveryWord(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT \* FROM "live_streams" WHERE \(LOWER\("title"\) LIKE \$1 ESCAPE '!' OR LOWER\("description"\) LIKE \$2 ESCAPE '!'\) AND \(LOWER\("title"\) LIKE \$3 ESCAPE '!' OR LOWER\("description"\) LIKE \$4 ESCAPE '!'\) ORDER BY created_at DESC,id DESC`).
		WithArgs("%simba%", "%simba%", "%yanga%", "%yanga%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	streams, err := client.LiveStreams().List(context.Background(), Filter{Search: "Simba,  YANGA"})
	require.NoError(t, err)
	assert.Empty(t, streams)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFilterKey(t *testing.T) {
	a := Filter{GenreIDs: []uint{3, 1}, Flags: map[string]bool{FlagNew: true, FlagFeatured: false}, Search: " Matrix "}
	b := Filter{GenreIDs: []uint{1, 3}, Flags: map[string]bool{FlagFeatured: false, FlagNew: true}, Search: "matrix"}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), Filter{}.Key())
	assert.Equal(t, Filter{Search: "tom hanks"}.Key(), Filter{Search: " Tom,hanks "}.Key())
	assert.NotEqual(t, Filter{Search: "tom hanks"}.Key(), Filter{Phrase: "tom hanks"}.Key())
	assert.NotContains(t, Filter{Phrase: "crazy, stupid"}.Key(), ",")
	assert.True(t, Filter{Search: " , "}.IsZero())
	assert.False(t, Filter{Phrase: " "}.IsZero())
	assert.False(t, a.IsZero())
}

func TestQualityLabel(t *testing.T) {
	assert.Equal(t, "High Definition", QualityHD.Label())
	assert.Equal(t, "Ultra HD", Quality4K.Label())
	assert.Equal(t, "Standard Definition", QualitySD.Label())
	assert.False(t, Quality("8K").Valid())
}

func TestSpecFor(t *testing.T) {
	spec, err := SpecFor(KindTVShow)
	require.NoError(t, err)
	assert.True(t, spec.HasFlag(FlagTrending))
	assert.False(t, spec.HasFlag(Flag4K))

	_, err = SpecFor("podcast")
	assert.Error(t, err)
}
