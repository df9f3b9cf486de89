package pipeline

import (
	"context"
	"log/slog"
)

// transcriberChain tries an ordered list of recognizers until one returns
// non-empty text. Provider failures are absorbed: the next provider is tried,
// and the chain only reports the last error when every attempt came up empty.
type transcriberChain struct {
	providers []Transcriber
}

// ChainTranscribers builds the fallback chain (network recognizer first,
// on-device second). Nil providers are skipped.
func ChainTranscribers(providers ...Transcriber) Transcriber {
	chain := &transcriberChain{}
	for _, p := range providers {
		if p != nil {
			chain.providers = append(chain.providers, p)
		}
	}
	return chain
}

func (c *transcriberChain) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var lastErr error
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := p.Transcribe(ctx, audio)
		if err != nil {
			slog.Debug("transcription attempt failed", "error", err)
			lastErr = err
			continue
		}
		if text != "" {
			return text, nil
		}
	}
	return "", lastErr
}
