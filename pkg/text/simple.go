package text

import (
	"context"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// SimpleTextReplacer implements TextReplacer using basic string replacement
type SimpleTextReplacer struct{}

var _ TextReplacer = (*SimpleTextReplacer)(nil)

// NewSimpleTextReplacer creates a new SimpleTextReplacer
func NewSimpleTextReplacer() *SimpleTextReplacer {
	return &SimpleTextReplacer{}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *SimpleTextReplacer) ReplaceText(ctx context.Context, path string, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
	}

	currentContent := string(originalContent)
	for _, rule := range rules {
		if rule.FromText == "" || !rule.Matches(path) {
			continue
		}

		count := strings.Count(currentContent, rule.FromText)
		if count == 0 {
			continue
		}

		currentContent = strings.ReplaceAll(currentContent, rule.FromText, rule.ToText)
		result.WasModified = true
		result.ReplacementCount += count
	}

	if result.WasModified {
		zerolog.Ctx(ctx).Trace().
			Str("path", path).
			Int("replacements", result.ReplacementCount).
			Msg("applied text replacements")
	}

	result.ModifiedContent = []byte(currentContent)
	return result, nil
}

// Matches reports whether the rule applies to path.
func (rule ReplacementRule) Matches(path string) bool {
	if len(rule.FileFilterGlobs) == 0 {
		return true
	}
	for _, glob := range rule.FileFilterGlobs {
		if ok, _ := doublestar.Match(glob, path); ok {
			return true
		}
	}
	return false
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *SimpleTextReplacer) ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.FromText == "" {
			return errors.Errorf("rule %d: from_text is required", i)
		}
		for _, glob := range rule.FileFilterGlobs {
			if !doublestar.ValidatePattern(glob) {
				return errors.Errorf("rule %d: invalid file glob %q", i, glob)
			}
		}
	}
	return nil
}
