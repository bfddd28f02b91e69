package ocr

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// documentProcessor is the subset of the Document AI client the engine calls.
type documentProcessor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
	Close() error
}

// DocumentAIConfig identifies the OCR processor to call.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
}

// ProcessorName returns the full resource name of the configured processor.
func (c DocumentAIConfig) ProcessorName() string {
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
	if c.ProcessorVersion != "" {
		name += "/processorVersions/" + c.ProcessorVersion
	}
	return name
}

// DocumentAIEngine implements Engine using a Document AI OCR processor.
type DocumentAIEngine struct {
	client documentProcessor
	config DocumentAIConfig
}

// NewDocumentAIEngine creates a Document AI engine with credentials from environment.
func NewDocumentAIEngine(ctx context.Context, config DocumentAIConfig) (*DocumentAIEngine, error) {
	const op = "NewDocumentAIEngine"

	if config.ProjectID == "" || config.ProcessorID == "" {
		return nil, WrapOCRError(op, ErrInvalidConfiguration, "project and processor ID are required")
	}
	if config.Location == "" {
		config.Location = "us"
	}

	credOpts := googleClientOptions()
	clientOptions := append([]option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)),
	}, credOpts...)

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(credOpts) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return &DocumentAIEngine{client: client, config: config}, nil
}

// newDocumentAIEngineWithClient creates a Document AI engine around an explicit client.
func newDocumentAIEngineWithClient(config DocumentAIConfig, client documentProcessor) *DocumentAIEngine {
	return &DocumentAIEngine{client: client, config: config}
}

func (d *DocumentAIEngine) Name() string { return EngineDocumentAI }

// Recognize sends the image inline to the OCR processor with the language as a hint.
func (d *DocumentAIEngine) Recognize(ctx context.Context, image []byte, language string) (*Result, error) {
	const op = "DocumentAIEngine.Recognize"
	startTime := time.Now()

	if err := checkImage(op, image, MaxImageSizeBytes); err != nil {
		return nil, err
	}

	req := &documentaipb.ProcessRequest{
		Name: d.config.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image,
				MimeType: imageMimeType(image),
			},
		},
		ProcessOptions: &documentaipb.ProcessOptions{
			OcrConfig: &documentaipb.OcrConfig{
				Hints: &documentaipb.OcrConfig_Hints{
					LanguageHints: LanguageHint(language),
				},
			},
		},
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Document AI call failed: %v", err))
	}
	if resp.Document == nil {
		return nil, WrapOCRError(op, ErrOCRFailed, "no document in response")
	}
	if resp.Document.Error != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Document AI error: %s", resp.Document.Error.Message))
	}

	result := processDocument(resp.Document)
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	return result, nil
}

// processDocument collects text, mean page confidence and detected languages.
func processDocument(doc *documentaipb.Document) *Result {
	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)
	var languages []string

	for _, page := range doc.Pages {
		if page.Layout != nil && page.Layout.Confidence > 0 {
			confidenceSum += page.Layout.Confidence
			confidenceCount++
		}
		for _, lang := range page.DetectedLanguages {
			if lang.LanguageCode != "" && !languageSet[lang.LanguageCode] {
				languageSet[lang.LanguageCode] = true
				languages = append(languages, lang.LanguageCode)
			}
		}
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	return &Result{
		Text:          doc.Text,
		Confidence:    avgConfidence,
		LanguageCodes: languages,
	}
}

// imageMimeType sniffs the image type; Document AI rejects requests without one.
func imageMimeType(image []byte) string {
	mimeType := http.DetectContentType(image)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") && mimeType != "application/pdf" {
		// Let the processor reject it with its own message
		return "image/png"
	}
	return mimeType
}

// Close closes the underlying Document AI client.
func (d *DocumentAIEngine) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
