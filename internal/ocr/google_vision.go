package ocr

import (
	"context"
	"fmt"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
)

// imageAnnotator is the subset of the Vision client the engine calls.
type imageAnnotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// VisionEngine implements Engine using Google Cloud Vision API document text detection.
type VisionEngine struct {
	client imageAnnotator
}

// NewVisionEngine creates a Vision engine with credentials from environment.
func NewVisionEngine(ctx context.Context) (*VisionEngine, error) {
	const op = "NewVisionEngine"

	opts := googleClientOptions()
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if len(opts) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, "failed to create Vision client")
	}

	return &VisionEngine{client: client}, nil
}

// newVisionEngineWithClient creates a Vision engine around an explicit client.
func newVisionEngineWithClient(client imageAnnotator) *VisionEngine {
	return &VisionEngine{client: client}
}

func (v *VisionEngine) Name() string { return EngineVision }

// Recognize runs DOCUMENT_TEXT_DETECTION on the image with the language as a hint.
func (v *VisionEngine) Recognize(ctx context.Context, image []byte, language string) (*Result, error) {
	const op = "VisionEngine.Recognize"
	startTime := time.Now()

	if err := checkImage(op, image, MaxImageSizeBytes); err != nil {
		return nil, err
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
				ImageContext: &visionpb.ImageContext{
					LanguageHints: LanguageHint(language),
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	imageResp := resp.Responses[0]
	if imageResp.Error != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", imageResp.Error.Message))
	}

	result := processVisionAnnotation(imageResp.FullTextAnnotation)
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	return result, nil
}

// processVisionAnnotation flattens the annotation into text, mean block confidence and detected languages.
// A nil annotation means Vision found no text.
func processVisionAnnotation(annotation *visionpb.TextAnnotation) *Result {
	if annotation == nil {
		return &Result{}
	}

	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)
	var languages []string

	for _, page := range annotation.Pages {
		if page.Property != nil {
			for _, lang := range page.Property.DetectedLanguages {
				if lang.LanguageCode != "" && !languageSet[lang.LanguageCode] {
					languageSet[lang.LanguageCode] = true
					languages = append(languages, lang.LanguageCode)
				}
			}
		}
		for _, block := range page.Blocks {
			if block.Confidence > 0 {
				confidenceSum += block.Confidence
				confidenceCount++
			}
		}
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	return &Result{
		Text:          annotation.Text,
		Confidence:    avgConfidence,
		LanguageCodes: languages,
	}
}

// Close closes the underlying Vision client.
func (v *VisionEngine) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
