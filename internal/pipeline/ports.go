package pipeline

import (
	"context"

	"github.com/akagup/go-emergency-response/internal/models"
)

// Transcriber converts audio bytes to text. An empty string means the
// recognizer produced nothing usable.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Captioner describes image bytes as text.
type Captioner interface {
	Caption(ctx context.Context, image []byte) (string, error)
}

// Classifier assigns an emergency-type label with a confidence score.
type Classifier interface {
	Classify(ctx context.Context, narrative string) (string, float64, error)
}

// Extractor pulls the structured entity bundle out of a narrative.
type Extractor interface {
	Extract(narrative string) (models.EntityBundle, error)
}

// Summarizer condenses pre-extracted document text into a short narrative.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}
