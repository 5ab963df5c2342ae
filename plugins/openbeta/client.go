// Package openbeta fetches the upstream area/climb hierarchy used to
// populate the route catalog. Ingestion is an offline process; the
// serving path only ever reads its output.
package openbeta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the public OpenBeta GraphQL endpoint
const DefaultBaseURL = "https://api.openbeta.io"

const areaQuery = `
query GetArea($id: ID!) {
  area(uuid: $id) {
    areaName
    metadata { lat lng }
    children { uuid areaName }
    climbs {
      uuid
      name
      content { description }
      grades { vscale }
      type { bouldering }
    }
  }
}`

// Client handles OpenBeta GraphQL requests
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new OpenBeta client
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// AreaNode is one node of the upstream hierarchy graph.
type AreaNode struct {
	AreaName string `json:"areaName"`
	Metadata struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	} `json:"metadata"`
	Children []ChildRef `json:"children"`
	Climbs   []Climb    `json:"climbs"`
}

// ChildRef references a child area by uuid.
type ChildRef struct {
	UUID     string `json:"uuid"`
	AreaName string `json:"areaName"`
}

// Climb is one upstream route record.
type Climb struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name"`
	Content struct {
		Description string `json:"description"`
	} `json:"content"`
	Grades struct {
		// Vscale arrives as a number or string depending on the record
		Vscale any `json:"vscale"`
	} `json:"grades"`
	Type struct {
		Bouldering bool `json:"bouldering"`
	} `json:"type"`
}

// GradeToken renders the climb's V-scale grade, or the "V?" sentinel
// when the record is ungraded.
func (c Climb) GradeToken() string {
	switch v := c.Grades.Vscale.(type) {
	case nil:
		return "V?"
	case float64:
		return fmt.Sprintf("V%d", int(v))
	case string:
		if v == "" {
			return "V?"
		}
		return "V" + v
	default:
		return fmt.Sprintf("V%v", v)
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type areaResponse struct {
	Data struct {
		Area *AreaNode `json:"area"`
	} `json:"data"`
}

// GetArea fetches one area node by uuid. A missing area returns
// (nil, nil); the walker skips it.
func (c *Client) GetArea(ctx context.Context, id string) (*AreaNode, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     areaQuery,
		Variables: map[string]any{"id": id},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch area %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var res areaResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return res.Data.Area, nil
}
