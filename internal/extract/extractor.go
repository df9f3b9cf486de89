// Package extract scans a narrative for domain entities in two stages: a
// configuration-supplied gazetteer of single-token cues, then general-purpose
// named-entity recognition for locations. Gazetteer matches take precedence;
// a token it claims is never re-emitted by the generic stage.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	prose "github.com/jdkato/prose/v2"

	"github.com/akagup/go-emergency-response/internal/config"
	"github.com/akagup/go-emergency-response/internal/models"
)

var (
	tokenRe = regexp.MustCompile(`[A-Za-z][A-Za-z']*`)

	// dateRe matches the date shapes the reports actually contain: numeric
	// dates, "Month day" forms, and common relative words.
	dateRe = regexp.MustCompile(`(?i)\b(?:` +
		`\d{4}-\d{2}-\d{2}` +
		`|\d{1,2}[/.]\d{1,2}[/.]\d{2,4}` +
		`|(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(?:st|nd|rd|th)?` +
		`|today|yesterday|tomorrow|tonight` +
		`)\b`)
)

type Extractor struct {
	// cues maps a lowercased token to its gazetteer category.
	cues map[string]models.EntityCategory
}

func New(lex config.Lexicon) (*Extractor, error) {
	cues := make(map[string]models.EntityCategory)
	for category, tokens := range lex.Gazetteer {
		c := models.EntityCategory(category)
		valid := false
		for _, known := range models.Categories {
			if known == c {
				valid = true
				break
			}
		}
		if !valid {
			return nil, fmt.Errorf("unknown gazetteer category %q", category)
		}
		for _, tok := range tokens {
			cues[strings.ToLower(tok)] = c
		}
	}
	return &Extractor{cues: cues}, nil
}

// Extract is a pure function of narrative and lexicon: identical inputs yield
// an identical bundle. Per-category order follows narrative occurrence order
// and duplicates are retained.
func (e *Extractor) Extract(narrative string) (models.EntityBundle, error) {
	bundle := models.NewEntityBundle()
	if strings.TrimSpace(narrative) == "" {
		return bundle, nil
	}

	// Stage 1: gazetteer cues, applied before generic recognition.
	claimed := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(narrative, -1) {
		lower := strings.ToLower(tok)
		if category, ok := e.cues[lower]; ok {
			bundle[category] = append(bundle[category], tok)
			claimed[lower] = true
		}
	}

	for _, m := range dateRe.FindAllString(narrative, -1) {
		bundle[models.CategoryDate] = append(bundle[models.CategoryDate], m)
	}

	// Stage 2: generic NER supplies locations.
	doc, err := prose.NewDocument(narrative)
	if err != nil {
		return bundle, fmt.Errorf("ner: %w", err)
	}
	for _, ent := range doc.Entities() {
		if ent.Label != "GPE" {
			continue
		}
		if claimed[strings.ToLower(ent.Text)] {
			continue
		}
		bundle[models.CategoryLocation] = append(bundle[models.CategoryLocation], ent.Text)
	}

	return bundle, nil
}
