// Package openmeteo talks to the open-meteo historical and forecast
// services and reduces their time series to a bouldering
// climbability verdict.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/boulderagent/tools"
)

const (
	// DefaultArchiveURL serves historical daily aggregates
	DefaultArchiveURL = "https://archive-api.open-meteo.com/v1/archive"
	// DefaultForecastURL serves hourly forecasts plus sun times
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// Client handles open-meteo API requests. Calls are synchronous and
// bounded by the HTTP client timeout; expiry is a fatal error for the
// evaluation that issued the call.
type Client struct {
	ArchiveURL  string
	ForecastURL string
	HTTPClient  *http.Client

	WeatherTool *WeatherTool
}

// NewClient creates an open-meteo client and registers its tools
func NewClient(archiveURL, forecastURL string, timeout time.Duration, severityMax bool, gk *genkit.Genkit, registry *tools.Registry) *Client {
	if archiveURL == "" {
		archiveURL = DefaultArchiveURL
	}
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		ArchiveURL:  archiveURL,
		ForecastURL: forecastURL,
		HTTPClient:  &http.Client{Timeout: timeout},
	}
	c.initTools(severityMax, gk, registry)
	return c
}

// initTools registers the weather tools
func (c *Client) initTools(severityMax bool, gk *genkit.Genkit, registry *tools.Registry) {
	if gk == nil || registry == nil {
		return
	}
	c.WeatherTool = NewWeatherTool(NewEvaluator(c, severityMax), gk, registry)
}

type archiveResponse struct {
	Daily struct {
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// ForecastResponse carries the hourly forecast series and the day's
// sun times. Hourly arrays are indexed by hour of day; sunrise and
// sunset are local ISO timestamps without a zone suffix.
type ForecastResponse struct {
	Hourly struct {
		Temperature2M      []float64 `json:"temperature_2m"`
		Precipitation      []float64 `json:"precipitation"`
		WeatherCode        []int     `json:"weather_code"`
		RelativeHumidity2M []float64 `json:"relative_humidity_2m"`
	} `json:"hourly"`
	Daily struct {
		Sunrise []string `json:"sunrise"`
		Sunset  []string `json:"sunset"`
	} `json:"daily"`
}

// DailyPrecipitation returns the daily precipitation sums in inches
// for [start, end], both inclusive.
func (c *Client) DailyPrecipitation(ctx context.Context, lat, lng float64, start, end time.Time) ([]float64, error) {
	params := url.Values{}
	params.Set("latitude", formatCoord(lat))
	params.Set("longitude", formatCoord(lng))
	params.Set("start_date", start.Format("2006-01-02"))
	params.Set("end_date", end.Format("2006-01-02"))
	params.Set("daily", "precipitation_sum")
	params.Set("precipitation_unit", "inch")
	params.Set("timezone", "auto")

	var res archiveResponse
	if err := c.get(ctx, c.ArchiveURL, params, &res); err != nil {
		return nil, fmt.Errorf("failed to fetch precipitation history: %w", err)
	}
	return res.Daily.PrecipitationSum, nil
}

// Forecast returns the hourly forecast plus sunrise/sunset for one day.
func (c *Client) Forecast(ctx context.Context, lat, lng float64, date time.Time) (*ForecastResponse, error) {
	day := date.Format("2006-01-02")

	params := url.Values{}
	params.Set("latitude", formatCoord(lat))
	params.Set("longitude", formatCoord(lng))
	params.Set("start_date", day)
	params.Set("end_date", day)
	params.Set("hourly", "temperature_2m,precipitation,weather_code,relative_humidity_2m")
	params.Set("daily", "sunrise,sunset")
	params.Set("temperature_unit", "fahrenheit")
	params.Set("precipitation_unit", "inch")
	params.Set("timezone", "auto")

	var res ForecastResponse
	if err := c.get(ctx, c.ForecastURL, params, &res); err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, baseURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
