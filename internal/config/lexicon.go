package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TaxonomyLabel is one emergency type the classifier can choose. Description,
// when set, is what gets embedded; the bare label is used otherwise.
type TaxonomyLabel struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description,omitempty"`
}

// EmbedText is the string sent to the embedding service for this label.
func (t TaxonomyLabel) EmbedText() string {
	if t.Description != "" {
		return t.Description
	}
	return t.Label
}

// Lexicon carries the configuration-supplied classifier taxonomy and the
// extractor gazetteer (single-token cues per category, matched
// case-insensitively before generic entity recognition).
type Lexicon struct {
	Taxonomy  []TaxonomyLabel     `yaml:"taxonomy"`
	Gazetteer map[string][]string `yaml:"gazetteer"`
}

// DefaultLexicon returns the built-in taxonomy and gazetteer.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Taxonomy: []TaxonomyLabel{
			{Label: "fire"},
			{Label: "earthquake"},
			{Label: "flood"},
			{Label: "car accident"},
			{Label: "building collapse"},
			{Label: "cyclone"},
			{Label: "landslide"},
			{Label: "medical emergency"},
		},
		Gazetteer: map[string][]string{
			"emergency_type":   {"earthquake", "fire", "flood", "hurricane", "tornado", "tsunami", "landslide"},
			"severity":         {"critical", "severe", "urgent", "major", "minor"},
			"victim_condition": {"injured", "unconscious", "stuck", "trapped", "missing"},
			"damage":           {"collapsed", "destroyed", "damaged", "flooded", "burned"},
		},
	}
}

// LoadLexicon reads a YAML lexicon file, falling back to the defaults when the
// path is empty. A file may override the taxonomy, the gazetteer, or both.
func LoadLexicon(path string) (Lexicon, error) {
	lex := DefaultLexicon()
	if path == "" {
		return lex, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("error reading lexicon file: %w", err)
	}

	var override Lexicon
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Lexicon{}, fmt.Errorf("error parsing lexicon file: %w", err)
	}

	if len(override.Taxonomy) > 0 {
		lex.Taxonomy = override.Taxonomy
	}
	if len(override.Gazetteer) > 0 {
		lex.Gazetteer = override.Gazetteer
	}
	return lex, nil
}
