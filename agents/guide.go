package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/boulderagent/log"
	"github.com/va6996/boulderagent/orm"
	"github.com/va6996/boulderagent/tools"
)

// systemPrompt pins the model to the catalog: it must never answer
// route or weather questions from memory.
const systemPrompt = `You are a specialized Bouldering guidebook.
You have no memory or knowledge of bouldering routes, grades, or weather.

STRICT RULES:
1. You MUST NOT answer any factual questions from memory.
2. For every user query, you MUST first call run_sql_query to fetch data or get_coordinates for location data.
3. If the database returns no results, state 'I cannot find that in my database' rather than guessing.

TOOLS:
1. DATA: Use 'run_sql_query' for counts/lists (table 'boulders': name, grade, area, sub_area, crag, rock, lat, lng; table 'areas': name, lat, lng, parent_name).
2. WEATHER: To check if it is dry/climbable:
   a. Call 'get_coordinates' to get lat/lng.
   b. If coordinates are returned, call 'get_bouldering_weather'.
   c. If 'ambiguous' is returned, ask the user which location they meant.
3. LOGIC:
   - 'Green' = Sending temps (35-60F) and dry.
   - 'Yellow' = Safe but sub-optimal (warm/humid).
   - 'Red' = Wet rock (seepage) or dangerous weather.`

// Answer is one completed conversation turn: the final text plus the
// tool invocations made to produce it, in invocation order.
type Answer struct {
	Text      string
	ToolCalls []orm.ToolCall
}

// Guide answers bouldering trip-planning questions by grounding the
// model in the catalog and weather tools. Constructed once at startup
// and injected wherever it is needed; no ambient state.
type Guide struct {
	genkit   *genkit.Genkit
	registry *tools.Registry
	model    ai.Model

	maxTurns int
	now      func() time.Time
}

// NewGuide creates a guide over the registered tools
func NewGuide(gk *genkit.Genkit, registry *tools.Registry, model ai.Model) *Guide {
	return &Guide{
		genkit:   gk,
		registry: registry,
		model:    model,
		maxTurns: 10,
		now:      time.Now,
	}
}

// Answer runs one conversation turn. Rate-limit failures from the
// model provider are retried with bounded exponential backoff; any
// other failure is returned as-is.
func (g *Guide) Answer(ctx context.Context, query string) (*Answer, error) {
	log.Infof(ctx, "Answering query: %s", query)

	var toolRefs []ai.ToolRef
	for _, tool := range g.registry.GetTools() {
		toolRefs = append(toolRefs, tool)
	}
	log.Debugf(ctx, "Tools available: %v", g.registry.Names())

	system := fmt.Sprintf("Today is %s.\n%s", g.now().Format("2006-01-02"), systemPrompt)

	var response *ai.ModelResponse
	operation := func() error {
		var err error
		response, err = genkit.Generate(ctx,
			g.genkit,
			ai.WithModel(g.model),
			ai.WithSystem(system),
			ai.WithPrompt(query),
			ai.WithTools(toolRefs...),
			ai.WithMaxTurns(g.maxTurns),
		)
		if err != nil {
			if IsRateLimited(err) {
				log.Warnf(ctx, "Rate limited, backing off: %v", err)
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	calls := ExtractToolCalls(response.History())
	for _, call := range calls {
		log.Infof(ctx, "Executed tool: %s", call.Name)
	}

	return &Answer{Text: response.Text(), ToolCalls: calls}, nil
}

// ExtractToolCalls pulls the tool requests out of a generation history
// in invocation order.
func ExtractToolCalls(history []*ai.Message) []orm.ToolCall {
	var calls []orm.ToolCall
	for _, msg := range history {
		for _, part := range msg.Content {
			if part.ToolRequest == nil {
				continue
			}
			args, _ := part.ToolRequest.Input.(map[string]any)
			calls = append(calls, orm.ToolCall{
				Name: part.ToolRequest.Name,
				Args: args,
			})
		}
	}
	return calls
}

// IsRateLimited reports whether an error looks like a provider quota
// or rate-limit rejection.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "rate limit", "resource exhausted", "resource_exhausted", "quota"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
