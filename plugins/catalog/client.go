// Package catalog exposes the climbing-route database to the agent:
// location resolution over the area/climb hierarchy and ad-hoc
// read-only queries.
package catalog

import (
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/boulderagent/tools"
	"gorm.io/gorm"
)

// Client bundles catalog access and registers its tools
type Client struct {
	Resolver *Resolver
	Executor *Executor

	CoordinatesTool *CoordinatesTool
	QueryTool       *QueryTool
}

// NewClient creates a catalog client over an open database and the
// file path backing it (the query executor re-opens the file read-only
// per statement).
func NewClient(db *gorm.DB, path string, gk *genkit.Genkit, registry *tools.Registry) *Client {
	c := &Client{
		Resolver: NewResolver(db),
		Executor: NewExecutor(path),
	}
	c.initTools(gk, registry)
	return c
}

// initTools registers all catalog tools
func (c *Client) initTools(gk *genkit.Genkit, registry *tools.Registry) {
	if gk == nil || registry == nil {
		return
	}

	c.CoordinatesTool = NewCoordinatesTool(c.Resolver, gk, registry)
	c.QueryTool = NewQueryTool(c.Executor, gk, registry)
}
