package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/boulderagent/log"
	toolspkg "github.com/va6996/boulderagent/tools"
)

type WeatherInput struct {
	Lat  float64 `json:"lat" description:"Latitude of the specific crag or rock"`
	Lng  float64 `json:"lng" description:"Longitude of the specific crag or rock"`
	Date string  `json:"date,omitempty" description:"Target trip date in YYYY-MM-DD format; defaults to today"`
}

// WeatherTool evaluates whether a coordinate is climbable: it checks
// 48h rain history for seepage, daylight-hours forecasts for rain and
// friction, and hazard codes for snow, hail, and thunderstorms.
type WeatherTool struct {
	evaluator *Evaluator
}

func NewWeatherTool(evaluator *Evaluator, gk *genkit.Genkit, registry *toolspkg.Registry) *WeatherTool {
	t := &WeatherTool{evaluator: evaluator}
	if gk == nil || registry == nil {
		return t
	}

	registry.Register(genkit.DefineTool[*WeatherInput, *Report](
		gk,
		"get_bouldering_weather",
		"Evaluates climbing conditions at a coordinate by checking 48h rain history (seepage), daylight-hours precipitation, severe-weather hazards, humidity, and temperature. Returns a status of Green, Yellow, or Red with reasons.",
		func(ctx *ai.ToolContext, input *WeatherInput) (*Report, error) {
			return t.Execute(ctx, input)
		},
	), func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		b, _ := json.Marshal(args)
		var input WeatherInput
		if err := json.Unmarshal(b, &input); err != nil {
			return nil, fmt.Errorf("failed to parse arguments: %w", err)
		}
		return t.Execute(ctx, &input)
	})
	return t
}

func (t *WeatherTool) Execute(ctx context.Context, input *WeatherInput) (*Report, error) {
	if input == nil {
		return nil, fmt.Errorf("input is required")
	}
	log.Debugf(ctx, "WeatherTool executing for (%f, %f) date=%q", input.Lat, input.Lng, input.Date)

	report, err := t.evaluator.Evaluate(ctx, input.Lat, input.Lng, input.Date)
	if err != nil {
		log.Errorf(ctx, "WeatherTool failed: %v", err)
		return nil, err
	}

	log.Debugf(ctx, "WeatherTool completed: %s (%s)", report.Status, report.Verdict())
	return report, nil
}
