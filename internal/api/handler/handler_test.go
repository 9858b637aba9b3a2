package handler

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/cinetro/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestParseFilter(t *testing.T) {
	c := newContext("/api/movies/?genres=1&genres=3,4&is_featured=true&is_new=0&is_trending=true&search=+tom+hanks,cast+")

	f, err := parseFilter(c, database.MovieSpec)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3, 4}, f.GenreIDs)
	assert.Equal(t, map[string]bool{database.FlagFeatured: true, database.FlagNew: false}, f.Flags)
	assert.Equal(t, []string{"tom", "hanks", "cast"}, f.Words())
}

func TestParseFilter_Empty(t *testing.T) {
	f, err := parseFilter(newContext("/api/livestreams/?is_live="), database.LiveStreamSpec)
	require.NoError(t, err)
	assert.True(t, f.IsZero())
}

func TestParseFilter_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   map[string][]string
	}{
		{
			name:   "bad bool",
			target: "/api/movies/?is_4k=yes",
			want:   map[string][]string{"is_4k": {"Select a valid choice. yes is not one of the available choices."}},
		},
		{
			name:   "bad genre",
			target: "/api/movies/?genres=action",
			want:   map[string][]string{"genres": {"\u201caction\u201d is not a valid value."}},
		},
		{
			name:   "negative id",
			target: "/api/movies/?genres=-1",
			want:   map[string][]string{"genres": {"\u201c-1\u201d is not a valid value."}},
		},
		{
			name:   "first bad value wins",
			target: "/api/movies/?genres=1,x,y&is_new=no",
			want: map[string][]string{
				"genres": {"\u201cx\u201d is not a valid value."},
				"is_new": {"Select a valid choice. no is not one of the available choices."},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFilter(newContext(tt.target), database.MovieSpec)
			var ferr *FilterError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tt.want, ferr.Fields)
		})
	}
}

func TestRequestOrigin(t *testing.T) {
	c := newContext("/api/movies/")
	c.Request.Host = "cinetro.local:8000"
	assert.Equal(t, "http://cinetro.local:8000", requestOrigin(c, ""))

	c.Request.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://cinetro.local:8000", requestOrigin(c, ""))

	c.Request.TLS = nil
	c.Request.Header.Set("X-Forwarded-Proto", "HTTPS, http")
	assert.Equal(t, "https://cinetro.local:8000", requestOrigin(c, ""))

	assert.Equal(t, "https://cinetro.example.com", requestOrigin(c, "https://cinetro.example.com"))
}

func TestParseUintParam(t *testing.T) {
	id, err := parseUintParam("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = parseUintParam("4x")
	assert.Error(t, err)
	_, err = parseUintParam("")
	assert.Error(t, err)
}
