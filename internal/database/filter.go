package database

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter restricts a content listing.
// The zero value matches every record.
type Filter struct {
	// GenreIDs keeps records linked to any of the genres.
	GenreIDs []uint
	// Flags keeps records whose boolean columns equal the given values.
	Flags map[string]bool
	// Search is split into words on whitespace and commas. A record is kept when
	// every word is contained in at least one search column, ignoring case.
	Search string
	// Phrase keeps records where any search column contains the whole phrase, ignoring case.
	Phrase string
}

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool {
	return len(f.GenreIDs) == 0 && len(f.Flags) == 0 && len(f.Words()) == 0 && f.Phrase == ""
}

// Words returns the search words, lower cased.
func (f Filter) Words() []string {
	return strings.FieldsFunc(strings.ToLower(f.Search), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// Key returns a stable string representation of the filter.
func (f Filter) Key() string {
	var b strings.Builder
	ids := slices.Clone(f.GenreIDs)
	slices.Sort(ids)
	fmt.Fprintf(&b, "g=%v", ids)
	for _, flag := range slices.Sorted(maps.Keys(f.Flags)) {
		fmt.Fprintf(&b, ";%s=%t", flag, f.Flags[flag])
	}
	// escaped so keys never contain commas
	fmt.Fprintf(&b, ";q=%s", url.QueryEscape(strings.Join(f.Words(), " ")))
	fmt.Fprintf(&b, ";p=%s", url.QueryEscape(strings.ToLower(f.Phrase)))
	return b.String()
}

// likeEscaper escapes LIKE wildcards so the term is matched literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// apply adds the filter conditions for the given kind to tx.
func (f Filter) apply(tx *gorm.DB, spec *KindSpec) (*gorm.DB, error) {
	if len(f.GenreIDs) > 0 {
		sub := tx.Session(&gorm.Session{NewDB: true}).
			Table(spec.GenreTable).
			Select("content_id").
			Where("genre_id IN ?", f.GenreIDs)
		tx = tx.Where("id IN (?)", sub)
	}

	for _, flag := range slices.Sorted(maps.Keys(f.Flags)) {
		if !spec.HasFlag(flag) {
			return nil, fmt.Errorf("%w: %s has no %s flag", ErrUnknownFilter, spec.Kind, flag)
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: flag}, Value: f.Flags[flag]})
	}

	for _, word := range f.Words() {
		tx = tx.Where(containsAny(spec.SearchColumns, word))
	}
	if f.Phrase != "" {
		tx = tx.Where(containsAny(spec.SearchColumns, strings.ToLower(f.Phrase)))
	}

	return tx, nil
}

// containsAny matches rows where any of the columns contains term.
func containsAny(columns []string, term string) clause.Expression {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	exprs := make([]clause.Expression, 0, len(columns))
	for _, col := range columns {
		exprs = append(exprs, clause.Expr{
			SQL:  "LOWER(?) LIKE ? ESCAPE '!'",
			Vars: []any{clause.Column{Name: col}, pattern},
		})
	}
	return clause.Or(exprs...)
}
