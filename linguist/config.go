package linguist

import (
	"fmt"
)

// Config holds the search-space parameters. Insertion probabilities are
// linear; the linguist converts them to the log domain.
type Config struct {
	LanguageWeight              float64 `yaml:"language_weight"`
	WordInsertionProbability    float64 `yaml:"word_insertion_probability"`
	SilenceInsertionProbability float64 `yaml:"silence_insertion_probability"`
	UnitInsertionProbability    float64 `yaml:"unit_insertion_probability"`
	FillerInsertionProbability  float64 `yaml:"filler_insertion_probability"`
	FullWordHistories           bool    `yaml:"full_word_histories"`
	AddFillerWords              bool    `yaml:"add_filler_words"`
	StrictVocabulary            bool    `yaml:"strict_vocabulary"`
}

// DefaultConfig returns neutral weights and full word histories.
func DefaultConfig() Config {
	return Config{
		LanguageWeight:              1.0,
		WordInsertionProbability:    1.0,
		SilenceInsertionProbability: 1.0,
		UnitInsertionProbability:    1.0,
		FillerInsertionProbability:  1.0,
		FullWordHistories:           true,
	}
}

// Validate checks that every probability is positive and the language
// weight is not negative.
func (c Config) Validate() error {
	if c.LanguageWeight < 0 {
		return fmt.Errorf("language_weight must not be negative, got %g", c.LanguageWeight)
	}
	probs := []struct {
		name  string
		value float64
	}{
		{"word_insertion_probability", c.WordInsertionProbability},
		{"silence_insertion_probability", c.SilenceInsertionProbability},
		{"unit_insertion_probability", c.UnitInsertionProbability},
		{"filler_insertion_probability", c.FillerInsertionProbability},
	}
	for _, p := range probs {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %g", p.name, p.value)
		}
	}
	return nil
}

// options returns the compile options the config implies.
func (c Config) options() []Option {
	return []Option{
		WithFillerWords(c.AddFillerWords),
		WithStrictVocabulary(c.StrictVocabulary),
	}
}
