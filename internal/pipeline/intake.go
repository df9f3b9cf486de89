package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/akagup/go-emergency-response/internal/classify"
	"github.com/akagup/go-emergency-response/internal/models"
	"github.com/akagup/go-emergency-response/internal/notify"
	"github.com/akagup/go-emergency-response/internal/observability"
	"github.com/akagup/go-emergency-response/internal/repository"
	"github.com/akagup/go-emergency-response/internal/stream"
)

// Submission is one emergency report: a geocoded location plus raw sources.
type Submission struct {
	LocationLabel   string
	Coordinate      models.Coordinate
	Input           RawInput
	ReporterContact string
}

// Result is what one completed intake run produced.
type Result struct {
	Record   *models.Emergency
	Dispatch notify.Receipt
}

// IntakeDeps wires the intake pipeline. Broadcaster, dispatcher, and metrics
// are optional; the rest are required.
type IntakeDeps struct {
	Normalizer       *Normalizer
	Classifier       Classifier
	Extractor        Extractor
	Summarizer       Summarizer
	Store            repository.EmergencyRepository
	Broadcaster      *stream.Broadcaster
	Dispatcher       *notify.Dispatcher
	AuthorityContact string
	Clock            clockwork.Clock
	Metrics          *observability.Metrics
	CallTimeout      time.Duration
}

// Intake runs one report submission as one logical unit of work:
// normalize, then classify and extract concurrently, then persist, then
// broadcast and dispatch.
type Intake struct {
	deps IntakeDeps
}

func NewIntake(deps IntakeDeps) *Intake {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	return &Intake{deps: deps}
}

// Process runs the full pipeline for one submission. Per-source failures have
// already been absorbed by the normalizer; an entirely empty narrative
// surfaces as ErrInsufficientInput. Enrichment failures degrade the record
// (label "unknown", empty entities) instead of losing the report. If ctx is
// cancelled, outstanding calls stop and nothing is persisted.
func (i *Intake) Process(ctx context.Context, sub Submission) (*Result, error) {
	narrative, err := i.deps.Normalizer.Normalize(ctx, sub.Input)
	if err != nil {
		i.countReport("rejected")
		return nil, err
	}
	if narrative == "" {
		i.countReport("rejected")
		return nil, fmt.Errorf("all sources empty: %w", models.ErrInsufficientInput)
	}

	return i.processNarrative(ctx, sub, narrative)
}

// ProcessDocument summarizes pre-extracted document text and feeds the
// summary through the same classification and extraction path.
func (i *Intake) ProcessDocument(ctx context.Context, sub Submission, documentText string) (*Result, error) {
	if strings.TrimSpace(documentText) == "" {
		i.countReport("rejected")
		return nil, fmt.Errorf("document report: %w", models.ErrNoInput)
	}

	callCtx, cancel := context.WithTimeout(ctx, i.deps.CallTimeout)
	defer cancel()
	summary, err := i.deps.Summarizer.Summarize(callCtx, documentText)
	if err != nil {
		i.countReport("rejected")
		return nil, fmt.Errorf("summarize document: %w", err)
	}
	if summary == "" {
		i.countReport("rejected")
		return nil, fmt.Errorf("document yielded no summary: %w", models.ErrInsufficientInput)
	}

	return i.processNarrative(ctx, sub, "Document Summary: "+summary)
}

func (i *Intake) processNarrative(ctx context.Context, sub Submission, narrative string) (*Result, error) {
	if !sub.Coordinate.Valid() {
		i.countReport("rejected")
		return nil, fmt.Errorf("report at %q: %w", sub.LocationLabel, models.ErrInvalidCoordinate)
	}

	// Classification and extraction are independent reads of the narrative.
	var (
		label         = classify.FallbackLabel
		confidence    float64
		entities      = models.NewEntityBundle()
		classifyError error
		extractError  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gctx, i.deps.CallTimeout)
		defer cancel()
		l, c, err := i.deps.Classifier.Classify(callCtx, narrative)
		if err != nil {
			slog.Warn("classification degraded", "location", sub.LocationLabel, "error", err)
			classifyError = err
			return nil
		}
		label, confidence = l, c
		return nil
	})
	g.Go(func() error {
		b, err := i.deps.Extractor.Extract(narrative)
		if err != nil {
			slog.Warn("entity extraction degraded", "location", sub.LocationLabel, "error", err)
			extractError = err
			return nil
		}
		entities = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	degraded := classifyError != nil || extractError != nil

	// A cancelled intake must not leave a partial record behind.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record := &models.Emergency{
		LocationLabel: sub.LocationLabel,
		Coordinate:    sub.Coordinate,
		Narrative:     narrative,
		Type:          label,
		Confidence:    confidence,
		Entities:      entities,
		CreatedAt:     i.deps.Clock.Now().UTC(),
	}

	if _, err := i.deps.Store.AddEmergency(ctx, record); err != nil {
		i.countReport("rejected")
		return nil, fmt.Errorf("persist emergency: %w", err)
	}

	if degraded {
		i.countReport("degraded")
	} else {
		i.countReport("persisted")
	}
	if m := i.deps.Metrics; m != nil {
		m.Classifications.WithLabelValues(label).Inc()
	}

	if i.deps.Broadcaster != nil {
		i.deps.Broadcaster.Broadcast(record)
	}

	result := &Result{Record: record}
	if i.deps.Dispatcher != nil {
		result.Dispatch = i.deps.Dispatcher.Dispatch(ctx, record, i.deps.AuthorityContact, sub.ReporterContact)
		i.countDispatch("authority", result.Dispatch.Authority)
		i.countDispatch("reporter", result.Dispatch.Reporter)
	}

	slog.Info("emergency recorded",
		"id", record.ID,
		"location", record.LocationLabel,
		"type", record.Type,
		"confidence", record.Confidence,
	)
	return result, nil
}

func (i *Intake) countReport(outcome string) {
	if m := i.deps.Metrics; m != nil {
		m.ReportsIngested.WithLabelValues(outcome).Inc()
	}
}

func (i *Intake) countDispatch(recipient string, status notify.Status) {
	m := i.deps.Metrics
	if m == nil {
		return
	}
	outcome := "failed"
	if status.Delivered {
		outcome = "delivered"
	}
	m.DispatchResults.WithLabelValues(recipient, outcome).Inc()
}
