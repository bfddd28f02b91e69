package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
)

// EngineConfig selects and configures an engine for NewEngine.
type EngineConfig struct {
	Engine string

	// Tesseract
	TessdataPrefix string

	// Document AI
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string
}

// NewEngine creates the engine named in the config.
func NewEngine(ctx context.Context, config EngineConfig) (Engine, error) {
	// Constructors return concrete pointers; check err before converting so a
	// failed constructor never yields a non-nil Engine.
	switch strings.ToLower(config.Engine) {
	case EngineTesseract, "":
		engine, err := NewTesseractEngine(config.TessdataPrefix)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case EngineVision:
		engine, err := NewVisionEngine(ctx)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case EngineDocumentAI:
		engine, err := NewDocumentAIEngine(ctx, DocumentAIConfig{
			ProjectID:        config.GoogleCloudProject,
			Location:         config.GoogleCloudLocation,
			ProcessorID:      config.DocumentAIProcessorID,
			ProcessorVersion: config.DocumentAIProcessorVersion,
		})
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, WrapOCRError("NewEngine", ErrUnknownEngine, fmt.Sprintf("engine %q", config.Engine))
	}
}

// googleClientOptions returns credential options from the environment, inline JSON first.
// An empty slice means the client falls back to Application Default Credentials.
func googleClientOptions() []option.ClientOption {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credFile)}
	}
	return nil
}
