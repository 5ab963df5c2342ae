package openmeteo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/va6996/boulderagent/log"
)

// Status is the three-state climbability verdict.
type Status string

const (
	// StatusGreen means sending temps and dry rock
	StatusGreen Status = "Green"
	// StatusYellow means safe but sub-optimal (warm/humid/cold)
	StatusYellow Status = "Yellow"
	// StatusRed means wet rock (seepage) or dangerous weather
	StatusRed Status = "Red"
)

// hazardCodes are the WMO weather codes treated as climbing hazards:
// 71-77 snow, 85-86 snow showers, 96/99 hail and thunderstorms.
var hazardCodes = map[int]bool{
	71: true, 73: true, 75: true, 77: true,
	85: true, 86: true, 96: true, 99: true,
}

// lookbackDays is how far past rain is summed when judging seepage.
// Most rock needs 24-48 hours to dry after meaningful rain.
const lookbackDays = 2

// Metrics summarizes the raw numbers behind a verdict.
type Metrics struct {
	TempRangeF       string  `json:"temp_f"`
	DaylightWindow   string  `json:"daylight_window"`
	HistoricalRainIn float64 `json:"historical_rain_in"`
}

// Report is a transient evaluation result; recomputed fresh on every
// request and never persisted.
type Report struct {
	Status  Status   `json:"status"`
	Reasons []string `json:"reasons"`
	Metrics Metrics  `json:"metrics"`
}

// Verdict joins the reasons into one line for display.
func (r *Report) Verdict() string {
	out := ""
	for i, reason := range r.Reasons {
		if i > 0 {
			out += " | "
		}
		out += reason
	}
	return out
}

// conditionInputs are the derived values the rule reduction runs over.
type conditionInputs struct {
	PastRain    float64
	DayPrecip   float64
	HasHazard   bool
	MaxHumidity float64
	MaxTemp     float64
	MinTemp     float64
}

// Evaluator turns weather time series into a climbability verdict.
type Evaluator struct {
	client *Client
	clock  clockwork.Clock

	// severityMax switches the reduction from the guidebook-compatible
	// last-writer-wins status to strict severity ordering.
	severityMax bool
}

// NewEvaluator creates an evaluator over the given weather client
func NewEvaluator(client *Client, severityMax bool) *Evaluator {
	return &Evaluator{
		client:      client,
		clock:       clockwork.NewRealClock(),
		severityMax: severityMax,
	}
}

// SetClock swaps the time source; tests inject a fake for
// deterministic lookback windows.
func (e *Evaluator) SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	e.clock = c
}

// Evaluate fetches recent-past and forecast weather for a coordinate
// and reduces it to a Green/Yellow/Red report. targetDate is
// YYYY-MM-DD and defaults to today. Upstream unavailability or a
// malformed payload fails the whole call; there are no retries and no
// partial reports.
func (e *Evaluator) Evaluate(ctx context.Context, lat, lng float64, targetDate string) (*Report, error) {
	now := e.clock.Now()

	target := now
	if targetDate != "" {
		parsed, err := time.Parse("2006-01-02", targetDate)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", targetDate, err)
		}
		target = parsed
	}

	// Seepage check: total precipitation over the lookback window
	// ending today.
	historyStart := now.AddDate(0, 0, -lookbackDays)
	sums, err := e.client.DailyPrecipitation(ctx, lat, lng, historyStart, now)
	if err != nil {
		return nil, err
	}
	pastRain := 0.0
	for _, v := range sums {
		pastRain += v
	}

	forecast, err := e.client.Forecast(ctx, lat, lng, target)
	if err != nil {
		return nil, err
	}
	if len(forecast.Daily.Sunrise) == 0 || len(forecast.Daily.Sunset) == 0 {
		return nil, fmt.Errorf("forecast response missing sunrise/sunset")
	}

	sunrise, err := parseLocalTime(forecast.Daily.Sunrise[0])
	if err != nil {
		return nil, fmt.Errorf("bad sunrise timestamp: %w", err)
	}
	sunset, err := parseLocalTime(forecast.Daily.Sunset[0])
	if err != nil {
		return nil, fmt.Errorf("bad sunset timestamp: %w", err)
	}

	// Night-time readings are excluded entirely, including night rain.
	from, to := sunrise.Hour(), sunset.Hour()
	dayTemps := daylight(forecast.Hourly.Temperature2M, from, to)
	dayPrecip := daylight(forecast.Hourly.Precipitation, from, to)
	dayCodes := daylight(forecast.Hourly.WeatherCode, from, to)
	dayHumidity := daylight(forecast.Hourly.RelativeHumidity2M, from, to)

	in := conditionInputs{
		PastRain:    pastRain,
		MaxTemp:     maxOrZero(dayTemps),
		MinTemp:     minOrZero(dayTemps),
		MaxHumidity: maxOrZero(dayHumidity),
	}
	for _, p := range dayPrecip {
		in.DayPrecip += p
	}
	for _, code := range dayCodes {
		if hazardCodes[code] {
			in.HasHazard = true
			break
		}
	}

	status, reasons := reduce(in, e.severityMax)
	log.Debugf(ctx, "Conditions at (%f, %f) on %s: %s", lat, lng, target.Format("2006-01-02"), status)

	return &Report{
		Status:  status,
		Reasons: reasons,
		Metrics: Metrics{
			TempRangeF:       fmt.Sprintf("%g° to %g°", in.MinTemp, in.MaxTemp),
			DaylightWindow:   fmt.Sprintf("%s - %s", sunrise.Format("03:04 PM"), sunset.Format("03:04 PM")),
			HistoricalRainIn: math.Round(pastRain*100) / 100,
		},
	}, nil
}

// reduce applies the fixed rule list in order. In compatibility mode
// each firing rule overwrites the status, so a later Yellow rule can
// downgrade an earlier Red; severityMax keeps the most severe status
// instead. Reasons accumulate in rule order either way.
func reduce(in conditionInputs, severityMax bool) (Status, []string) {
	status := StatusGreen
	var reasons []string

	set := func(s Status) {
		if severityMax && status == StatusRed {
			return
		}
		status = s
	}

	if in.PastRain > 0.15 {
		set(StatusRed)
		reasons = append(reasons, fmt.Sprintf("Recent Rain: %.2f\" in the last 48h likely caused seepage.", in.PastRain))
	}
	if in.DayPrecip > 0.02 {
		set(StatusRed)
		reasons = append(reasons, fmt.Sprintf("Forecasted Precip: %.2f\" expected during climbing hours.", in.DayPrecip))
	}
	if in.HasHazard {
		set(StatusRed)
		reasons = append(reasons, "Severe Hazard: Snow, Hail, or Storms forecasted.")
	}
	if in.MaxHumidity > 60 {
		set(StatusYellow)
		reasons = append(reasons, fmt.Sprintf("High Humidity: Humidity of %g may impact friction.", in.MaxHumidity))
	}
	if in.MaxTemp > 80 {
		set(StatusYellow)
		reasons = append(reasons, fmt.Sprintf("Sub-optimal Temps: High of %g°F is a bit warm/greasy.", in.MaxTemp))
	}
	if in.MinTemp < 32 {
		set(StatusYellow)
		reasons = append(reasons, fmt.Sprintf("Sub-optimal Temps: Low of %g°F is quite cold.", in.MinTemp))
	}

	if len(reasons) == 0 {
		return StatusGreen, []string{"Prime bouldering conditions."}
	}
	return status, reasons
}

// daylight slices an hourly series to [from, to), clamped to the
// series bounds.
func daylight[T any](series []T, from, to int) []T {
	if from < 0 {
		from = 0
	}
	if to > len(series) {
		to = len(series)
	}
	if from >= to {
		return nil
	}
	return series[from:to]
}

func maxOrZero(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	out := vals[0]
	for _, v := range vals[1:] {
		if v > out {
			out = v
		}
	}
	return out
}

func minOrZero(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	out := vals[0]
	for _, v := range vals[1:] {
		if v < out {
			out = v
		}
	}
	return out
}

// parseLocalTime handles open-meteo's zone-less local ISO timestamps.
func parseLocalTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
