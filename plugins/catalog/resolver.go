package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/va6996/boulderagent/log"
	"github.com/va6996/boulderagent/orm"
	"gorm.io/gorm"
)

// Kind selects which tier of the hierarchy a resolution searches.
type Kind int

const (
	// KindAny searches areas and climbs
	KindAny Kind = iota
	// KindArea restricts the search to areas
	KindArea
	// KindPoint restricts the search to specific climbs
	KindPoint
)

// ParseKind maps a free-text location type token to a search tier.
// Unknown or empty tokens search both tiers.
func ParseKind(token string) Kind {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "area", "areas", "sub_area", "subarea", "region":
		return KindArea
	case "rock", "boulder", "climb", "route", "crag", "point":
		return KindPoint
	default:
		return KindAny
	}
}

// Resolution is the shape of a resolver result: exactly one of no
// match, a unique coordinate, or an ambiguous candidate list.
type Resolution int

const (
	// NoMatch means zero candidates were found
	NoMatch Resolution = iota
	// Unique means exactly one coordinate was resolved
	Unique
	// Ambiguous means the caller must disambiguate between Options
	Ambiguous
)

// Option describes one candidate when resolution is ambiguous.
type Option struct {
	Name     string `json:"name"`
	Context  string `json:"context"`
	Category string `json:"category"`
}

// Match is a transient resolution result; never persisted.
type Match struct {
	Resolution Resolution
	// Source is "area" or "point" when Resolution is Unique
	Source  string
	Name    string
	Lat     float64
	Lng     float64
	Options []Option
}

// candidate carries one search hit through the combined-set logic.
type candidate struct {
	name     string
	context  string
	category string
	lat      *float64
	lng      *float64
}

// Resolver disambiguates free-text place names against the two-tier
// catalog hierarchy. Pure read; no side effects.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a resolver over the catalog database
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve searches areas first. A unique area match wins immediately,
// tagged "area", without consulting climbs. Otherwise area and climb
// matches are pooled into one candidate set: zero is no match, one is
// a unique coordinate tagged "point", more is ambiguous.
func (r *Resolver) Resolve(ctx context.Context, name, kindToken, parentHint string) (*Match, error) {
	kind := ParseKind(kindToken)
	log.Debugf(ctx, "Resolving location %q (kind=%v, hint=%q)", name, kindToken, parentHint)

	var candidates []candidate

	if kind != KindPoint {
		areas, err := orm.SearchAreas(r.db, name, parentHint)
		if err != nil {
			return nil, fmt.Errorf("area search failed: %w", err)
		}

		// A unique area match takes precedence over any climb matches.
		if len(areas) == 1 {
			a := areas[0]
			return &Match{
				Resolution: Unique,
				Source:     "area",
				Name:       a.Name,
				Lat:        *a.Lat,
				Lng:        *a.Lng,
			}, nil
		}

		for _, a := range areas {
			candidates = append(candidates, candidate{
				name:     a.Name,
				context:  deref(a.ParentName),
				category: "Area",
				lat:      a.Lat,
				lng:      a.Lng,
			})
		}
	}

	if kind != KindArea {
		boulders, err := orm.SearchBoulders(r.db, name, parentHint)
		if err != nil {
			return nil, fmt.Errorf("climb search failed: %w", err)
		}
		for _, b := range boulders {
			candidates = append(candidates, candidate{
				name:     b.Name,
				context:  climbContext(b),
				category: "Climb/Rock",
				lat:      b.Lat,
				lng:      b.Lng,
			})
		}
	}

	switch len(candidates) {
	case 0:
		return &Match{Resolution: NoMatch}, nil
	case 1:
		c := candidates[0]
		if c.lat == nil || c.lng == nil {
			// Coordinate inheritance happens at ingestion time; a row
			// without GPS cannot be resolved here.
			return &Match{Resolution: NoMatch}, nil
		}
		return &Match{
			Resolution: Unique,
			Source:     "point",
			Name:       c.name,
			Lat:        *c.lat,
			Lng:        *c.lng,
		}, nil
	default:
		options := make([]Option, 0, len(candidates))
		for _, c := range candidates {
			options = append(options, Option{
				Name:     c.name,
				Context:  c.context,
				Category: c.category,
			})
		}
		return &Match{Resolution: Ambiguous, Options: options}, nil
	}
}

// climbContext renders "<area> > <sub_area>" for disambiguation lists,
// dropping empty labels.
func climbContext(b orm.Boulder) string {
	var parts []string
	if v := deref(b.Area); v != "" {
		parts = append(parts, v)
	}
	if v := deref(b.SubArea); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, " > ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
