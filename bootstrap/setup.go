package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"
	"github.com/va6996/boulderagent/agents"
	"github.com/va6996/boulderagent/config"
	"github.com/va6996/boulderagent/log"
	"github.com/va6996/boulderagent/orm"
	"github.com/va6996/boulderagent/plugins/catalog"
	"github.com/va6996/boulderagent/plugins/openmeteo"
	"github.com/va6996/boulderagent/tools"
	"gorm.io/gorm"
)

// App holds the initialized components of the application
type App struct {
	Guide    *agents.Guide
	Genkit   *genkit.Genkit
	Registry *tools.Registry
	Model    ai.Model
	DB       *gorm.DB

	Catalog *catalog.Client
	Weather *openmeteo.Client
}

// Setup initializes the application components based on the
// configuration. Everything is constructed here once and injected;
// there is no global agent state.
func Setup(ctx context.Context, cfg *config.Config) (*App, error) {
	// 1. Setup Genkit with AI Plugin
	var gk *genkit.Genkit
	var model ai.Model

	if cfg.AI.Plugin == "ollama" {
		log.Infof(ctx, "Using Ollama Plugin (Model: %s)...", cfg.AI.Ollama.Model)
		ollamaPlugin := &ollama.Ollama{
			ServerAddress: cfg.AI.Ollama.BaseURL,
		}
		gk = genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))

		model = ollamaPlugin.DefineModel(gk, ollama.ModelDefinition{
			Name: cfg.AI.Ollama.Model,
			Type: "chat",
		}, &ai.ModelOptions{
			Supports: &ai.ModelSupports{
				Multiturn:  true,
				SystemRole: true,
				Tools:      true,
				Media:      false,
			},
		})
	} else {
		log.Info(ctx, "Using Gemini Plugin...")
		if cfg.AI.Gemini.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY must be set (or set AI_PLUGIN=ollama)")
		}

		gk = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{
			APIKey: cfg.AI.Gemini.APIKey,
		}))
		model = googlegenai.GoogleAIModel(gk, cfg.AI.Gemini.Model)
	}

	// 2. Open the route catalog
	db, err := orm.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog at %s: %w", cfg.Catalog.Path, err)
	}

	// 3. Init Tools Registry
	registry := tools.NewRegistry()

	catalogClient := catalog.NewClient(db, cfg.Catalog.Path, gk, registry)

	weatherClient := openmeteo.NewClient(
		cfg.Weather.ArchiveURL,
		cfg.Weather.ForecastURL,
		time.Duration(cfg.Weather.TimeoutSeconds)*time.Second,
		cfg.Conditions.SeverityMax,
		gk, registry,
	)

	// 4. Init the Guide
	log.Info(ctx, "Initializing Guide...")
	guide := agents.NewGuide(gk, registry, model)

	return &App{
		Guide:    guide,
		Genkit:   gk,
		Registry: registry,
		Model:    model,
		DB:       db,
		Catalog:  catalogClient,
		Weather:  weatherClient,
	}, nil
}
