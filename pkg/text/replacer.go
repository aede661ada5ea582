package text

import (
	"context"
	"io"

	"github.com/walteh/notepub/pkg/config"
)

// ReplacementRule defines a single text replacement operation
type ReplacementRule struct {
	// FromText is the text to replace
	FromText string

	// ToText is the replacement text
	ToText string

	// FileFilterGlobs limits the rule to matching vault-relative paths, empty means every file
	FileFilterGlobs []string
}

// ReplacementResult contains the results of a text replacement operation
type ReplacementResult struct {
	// WasModified indicates if any replacements were made
	WasModified bool

	// ReplacementCount is the number of replacements made
	ReplacementCount int

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements
	ModifiedContent []byte
}

// TextReplacer defines the interface for text replacement operations
type TextReplacer interface {
	// ReplaceText applies the rules whose filters match path
	ReplaceText(ctx context.Context, path string, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error)

	// ValidateRules checks that all rules are valid
	ValidateRules(rules []ReplacementRule) error
}

// RulesFromConfig converts configured replacements into rules.
func RulesFromConfig(replacements []config.Replacement) []ReplacementRule {
	rules := make([]ReplacementRule, 0, len(replacements))
	for _, r := range replacements {
		rules = append(rules, ReplacementRule{
			FromText:        r.From,
			ToText:          r.To,
			FileFilterGlobs: r.Files,
		})
	}
	return rules
}
