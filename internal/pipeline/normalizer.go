package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/akagup/go-emergency-response/internal/models"
)

// RawInput is one report submission's source material. Any combination of
// sources may be present; at least one must be.
type RawInput struct {
	Text  string
	Audio []byte
	Image []byte
}

func (in RawInput) empty() bool {
	return strings.TrimSpace(in.Text) == "" && len(in.Audio) == 0 && len(in.Image) == 0
}

// Normalizer fuses the supplied sources into a single narrative. The external
// calls (transcription, captioning) run concurrently, each under its own
// timeout, but assembly order is fixed: text, voice, image.
type Normalizer struct {
	transcriber Transcriber
	captioner   Captioner
	callTimeout time.Duration
}

func NewNormalizer(transcriber Transcriber, captioner Captioner, callTimeout time.Duration) *Normalizer {
	return &Normalizer{
		transcriber: transcriber,
		captioner:   captioner,
		callTimeout: callTimeout,
	}
}

// Normalize returns the unified narrative. A submission with no sources at
// all fails with ErrNoInput. A source whose collaborator fails or times out
// contributes nothing; the narrative is built from whatever succeeded. When
// every source comes up empty the narrative is "" and the caller decides how
// to surface the lack of information.
func (n *Normalizer) Normalize(ctx context.Context, in RawInput) (string, error) {
	if in.empty() {
		return "", fmt.Errorf("report submission: %w", models.ErrNoInput)
	}

	var voice, image string

	g, gctx := errgroup.WithContext(ctx)
	if len(in.Audio) > 0 && n.transcriber != nil {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, n.callTimeout)
			defer cancel()
			text, err := n.transcriber.Transcribe(callCtx, in.Audio)
			if err != nil {
				slog.Warn("voice contribution dropped", "error", err)
				return nil
			}
			voice = text
			return nil
		})
	}
	if len(in.Image) > 0 && n.captioner != nil {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, n.callTimeout)
			defer cancel()
			text, err := n.captioner.Caption(callCtx, in.Image)
			if err != nil {
				slog.Warn("image contribution dropped", "error", err)
				return nil
			}
			image = text
			return nil
		})
	}
	// Enrichment goroutines absorb their own failures, so the only wait error
	// possible here is context cancellation.
	if err := g.Wait(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sections []string
	if t := strings.TrimSpace(in.Text); t != "" {
		sections = append(sections, "Text Description: "+t)
	}
	if v := strings.TrimSpace(voice); v != "" {
		sections = append(sections, "Voice Transcription: "+v)
	}
	if i := strings.TrimSpace(image); i != "" {
		sections = append(sections, "Image Description: "+i)
	}

	return strings.Join(sections, "\n"), nil
}
