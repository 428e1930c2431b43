package middleware

import (
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"

	"github.com/trellis-labs/trellis/backend/internal/util"
	"github.com/trellis-labs/trellis/backend/pkg/ai"
	oai "github.com/trellis-labs/trellis/backend/pkg/ai/ollama"
	gai "github.com/trellis-labs/trellis/backend/pkg/ai/openai"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
	"github.com/trellis-labs/trellis/backend/pkg/store"
)

// CollaboratorSelection names the generation backend a request wants to use.
// Empty fields fall back to the server's environment configuration.
type CollaboratorSelection struct {
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	Credential string `json:"credential,omitempty"`
}

type App struct {
	Store store.Store
	S3    *awss3.Client
	// AiClient is the environment-configured default backend. It is nil when
	// no credential is configured; extraction runs then fail at analyze.
	AiClient ai.TextClient
}

type AppContext struct {
	echo.Context
	App *App
}

// ResolveAiClient returns the backend for a request-level selection, falling
// back to the default client when the selection carries no credential.
func (a *App) ResolveAiClient(sel CollaboratorSelection) ai.TextClient {
	if sel.Credential == "" {
		return a.AiClient
	}
	return buildClient(
		orDefault(sel.Provider, util.GetEnv("AI_ADAPTER")),
		orDefault(sel.Model, util.GetEnv("AI_CHAT_MODEL")),
		util.GetEnv("AI_CHAT_URL"),
		sel.Credential,
	)
}

func AppContextMiddleware(st store.Store, s3 *awss3.Client) echo.MiddlewareFunc {
	aiClient := buildClient(
		util.GetEnv("AI_ADAPTER"),
		util.GetEnv("AI_CHAT_MODEL"),
		util.GetEnv("AI_CHAT_URL"),
		util.GetEnv("AI_CHAT_KEY"),
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				Store:    st,
				S3:       s3,
				AiClient: aiClient,
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}

func buildClient(adapter, model, baseURL, apiKey string) ai.TextClient {
	switch adapter {
	case "ollama":
		client, err := oai.New(oai.Params{
			Model:                 model,
			BaseURL:               baseURL,
			APIKey:                apiKey,
			MaxConcurrentRequests: int64(util.GetEnvInt("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Error("Failed to create Ollama client", "err", err)
			return nil
		}
		return client
	default:
		if client := gai.New(gai.Params{
			Model:   model,
			BaseURL: baseURL,
			APIKey:  apiKey,
		}); client != nil {
			return client
		}
		return nil
	}
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
