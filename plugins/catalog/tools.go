package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/boulderagent/log"
	toolspkg "github.com/va6996/boulderagent/tools"
)

// --- Coordinates Tool ---

type CoordinatesInput struct {
	LocationName string `json:"location_name" description:"Name of the area, crag, rock, or boulder to look up"`
	LocationType string `json:"location_type,omitempty" description:"Optional filter: 'area' to search regions only; 'rock', 'boulder', 'climb', or 'route' to search specific climbs only"`
	ParentHint   string `json:"parent_hint,omitempty" description:"Optional parent area name to narrow matches, e.g. 'Gunks'"`
}

type CoordinatesOutput struct {
	Found     bool     `json:"found"`
	Kind      string   `json:"kind,omitempty"`
	Name      string   `json:"name,omitempty"`
	Lat       float64  `json:"lat,omitempty"`
	Lng       float64  `json:"lng,omitempty"`
	Ambiguous []Option `json:"ambiguous,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// CoordinatesTool resolves a place name to a coordinate pair, or to a
// disambiguation list the agent relays back to the user.
type CoordinatesTool struct {
	resolver *Resolver
}

func NewCoordinatesTool(resolver *Resolver, gk *genkit.Genkit, registry *toolspkg.Registry) *CoordinatesTool {
	t := &CoordinatesTool{resolver: resolver}
	if gk == nil || registry == nil {
		return t
	}

	registry.Register(genkit.DefineTool[*CoordinatesInput, *CoordinatesOutput](
		gk,
		"get_coordinates",
		"Fetches the latitude and longitude for a climbing area, crag, rock, or boulder by name. Returns an 'ambiguous' list of candidates when more than one location matches.",
		func(ctx *ai.ToolContext, input *CoordinatesInput) (*CoordinatesOutput, error) {
			return t.Execute(ctx, input)
		},
	), func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		b, _ := json.Marshal(args)
		var input CoordinatesInput
		if err := json.Unmarshal(b, &input); err != nil {
			return nil, fmt.Errorf("failed to parse arguments: %w", err)
		}
		return t.Execute(ctx, &input)
	})
	return t
}

func (t *CoordinatesTool) Execute(ctx context.Context, input *CoordinatesInput) (*CoordinatesOutput, error) {
	if input == nil || input.LocationName == "" {
		return nil, fmt.Errorf("location_name is required")
	}
	log.Debugf(ctx, "CoordinatesTool executing for %q", input.LocationName)

	match, err := t.resolver.Resolve(ctx, input.LocationName, input.LocationType, input.ParentHint)
	if err != nil {
		log.Errorf(ctx, "CoordinatesTool failed: %v", err)
		return nil, err
	}

	switch match.Resolution {
	case Unique:
		return &CoordinatesOutput{
			Found: true,
			Kind:  match.Source,
			Name:  match.Name,
			Lat:   match.Lat,
			Lng:   match.Lng,
		}, nil
	case Ambiguous:
		log.Debugf(ctx, "CoordinatesTool: %d ambiguous candidates for %q", len(match.Options), input.LocationName)
		return &CoordinatesOutput{
			Ambiguous: match.Options,
			Message:   fmt.Sprintf("%q is ambiguous; ask the user which of the %d candidates they meant.", input.LocationName, len(match.Options)),
		}, nil
	default:
		return &CoordinatesOutput{
			Message: fmt.Sprintf("no location matching %q in the catalog", input.LocationName),
		}, nil
	}
}

// --- SQL Query Tool ---

type QueryInput struct {
	SQL string `json:"sql" description:"A single SQLite SELECT statement against the 'boulders' table (columns: uuid, area, sub_area, crag, rock, name, grade, description, lat, lng) or the 'areas' table (uuid, name, lat, lng, parent_name)"`
}

type QueryOutput struct {
	Rows  []map[string]any `json:"rows"`
	Count int              `json:"count"`
}

// QueryTool runs read-only catalog queries for counts and lists.
type QueryTool struct {
	executor *Executor
}

func NewQueryTool(executor *Executor, gk *genkit.Genkit, registry *toolspkg.Registry) *QueryTool {
	t := &QueryTool{executor: executor}
	if gk == nil || registry == nil {
		return t
	}

	registry.Register(genkit.DefineTool[*QueryInput, *QueryOutput](
		gk,
		"run_sql_query",
		"Executes a read-only SQL query against the route catalog. Use this to answer questions about counts, grades, and location lists. Failures come back as a row with an 'error' field.",
		func(ctx *ai.ToolContext, input *QueryInput) (*QueryOutput, error) {
			return t.Execute(ctx, input)
		},
	), func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		sqlText, _ := args["sql"].(string)
		return t.Execute(ctx, &QueryInput{SQL: sqlText})
	})
	return t
}

func (t *QueryTool) Execute(ctx context.Context, input *QueryInput) (*QueryOutput, error) {
	if input == nil || input.SQL == "" {
		return nil, fmt.Errorf("sql is required")
	}
	log.Debugf(ctx, "QueryTool executing: %s", input.SQL)

	rows := t.executor.RunQuery(ctx, input.SQL)
	return &QueryOutput{Rows: rows, Count: len(rows)}, nil
}
