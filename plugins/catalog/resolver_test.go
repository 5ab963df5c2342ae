package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_UniqueAreaShortCircuitsClimbMatches(t *testing.T) {
	db := setupTestDB(t)

	// One area and two climbs share the name fragment; the unique area
	// must win without the climbs being consulted.
	seedArea(t, db, "a-1", "Powerlinez", ptr(41.25), ptr(-74.02), nil)
	seedBoulder(t, db, "b-1", "Powerlinez", "Main Wall", "Powerlinez Classic", ptr(41.26), ptr(-74.03))
	seedBoulder(t, db, "b-2", "Powerlinez", "Main Wall", "Powerlinez Traverse", ptr(41.27), ptr(-74.04))

	match, err := NewResolver(db).Resolve(context.Background(), "powerlinez", "", "")
	require.NoError(t, err)
	assert.Equal(t, Unique, match.Resolution)
	assert.Equal(t, "area", match.Source)
	assert.Equal(t, "Powerlinez", match.Name)
	assert.Equal(t, 41.25, match.Lat)
	assert.Equal(t, -74.02, match.Lng)
}

func TestResolve_CaseInsensitiveSubstring(t *testing.T) {
	db := setupTestDB(t)
	seedArea(t, db, "a-1", "Gunks", ptr(41.73), ptr(-74.19), nil)

	match, err := NewResolver(db).Resolve(context.Background(), "gunks", "", "")
	require.NoError(t, err)
	assert.Equal(t, Unique, match.Resolution)
	assert.Equal(t, "Gunks", match.Name)
}

func TestResolve_NoMatch(t *testing.T) {
	db := setupTestDB(t)
	seedArea(t, db, "a-1", "Gunks", ptr(41.73), ptr(-74.19), nil)

	match, err := NewResolver(db).Resolve(context.Background(), "yosemite", "", "")
	require.NoError(t, err)
	assert.Equal(t, NoMatch, match.Resolution)
	assert.Empty(t, match.Options)
}

func TestResolve_SingleClimbIsPoint(t *testing.T) {
	db := setupTestDB(t)
	seedBoulder(t, db, "b-1", "Gunks", "Trapps", "Gill Egg", ptr(41.74), ptr(-74.18))

	match, err := NewResolver(db).Resolve(context.Background(), "gill egg", "", "")
	require.NoError(t, err)
	assert.Equal(t, Unique, match.Resolution)
	assert.Equal(t, "point", match.Source)
	assert.Equal(t, 41.74, match.Lat)
}

func TestResolve_AmbiguousListsEveryCandidate(t *testing.T) {
	db := setupTestDB(t)

	seedArea(t, db, "a-1", "Boulder Field", ptr(41.0), ptr(-74.0), ptr("Gunks"))
	seedArea(t, db, "a-2", "Boulder Field East", ptr(41.1), ptr(-74.1), ptr("Gunks"))
	seedBoulder(t, db, "b-1", "Powerlinez", "Main Wall", "Boulder Fielder", ptr(41.2), ptr(-74.2))

	match, err := NewResolver(db).Resolve(context.Background(), "boulder field", "", "")
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, match.Resolution)
	require.Len(t, match.Options, 3)

	categories := map[string]int{}
	for _, opt := range match.Options {
		categories[opt.Category]++
	}
	assert.Equal(t, 2, categories["Area"])
	assert.Equal(t, 1, categories["Climb/Rock"])

	// Climb context renders "<area> > <sub_area>"
	for _, opt := range match.Options {
		if opt.Category == "Climb/Rock" {
			assert.Equal(t, "Powerlinez > Main Wall", opt.Context)
		}
	}
}

func TestResolve_KindRestrictsTier(t *testing.T) {
	db := setupTestDB(t)

	seedArea(t, db, "a-1", "Powerlinez", ptr(41.25), ptr(-74.02), nil)
	seedBoulder(t, db, "b-1", "Powerlinez", "Main Wall", "Powerlinez Classic", ptr(41.26), ptr(-74.03))
	seedBoulder(t, db, "b-2", "Powerlinez", "Main Wall", "Powerlinez Traverse", ptr(41.27), ptr(-74.04))

	// Restricting to climbs skips the area short-circuit entirely.
	match, err := NewResolver(db).Resolve(context.Background(), "powerlinez", "rock", "")
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, match.Resolution)
	assert.Len(t, match.Options, 2)

	// Restricting to areas never sees climbs.
	match, err = NewResolver(db).Resolve(context.Background(), "classic", "area", "")
	require.NoError(t, err)
	assert.Equal(t, NoMatch, match.Resolution)
}

func TestResolve_ParentHintStrictlyNarrows(t *testing.T) {
	db := setupTestDB(t)

	seedBoulder(t, db, "b-1", "Gunks", "Trapps", "The Egg", ptr(41.7), ptr(-74.2))
	seedBoulder(t, db, "b-2", "Powerlinez", "Main Wall", "The Egg", ptr(41.2), ptr(-74.0))

	resolver := NewResolver(db)

	unhinted, err := resolver.Resolve(context.Background(), "the egg", "rock", "")
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, unhinted.Resolution)
	assert.Len(t, unhinted.Options, 2)

	hinted, err := resolver.Resolve(context.Background(), "the egg", "rock", "gunks")
	require.NoError(t, err)
	assert.Equal(t, Unique, hinted.Resolution)
	assert.Equal(t, 41.7, hinted.Lat)
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindArea, ParseKind("area"))
	assert.Equal(t, KindArea, ParseKind("sub_area"))
	assert.Equal(t, KindPoint, ParseKind("rock"))
	assert.Equal(t, KindPoint, ParseKind("Boulder"))
	assert.Equal(t, KindPoint, ParseKind("route"))
	assert.Equal(t, KindAny, ParseKind(""))
	assert.Equal(t, KindAny, ParseKind("whatever"))
}
