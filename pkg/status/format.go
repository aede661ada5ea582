package status

import (
	"fmt"
)

// FileFormatter defines how file operations and status should be formatted
type FileFormatter interface {
	// FormatFileOperation formats a file operation status message
	FormatFileOperation(path, fileType, status string, isNew, isModified, isFailed bool) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string

	// FormatSummary formats the end-of-run counts
	FormatSummary(successed, failed int) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a file operation status message with emojis
func (f *DefaultFileFormatter) FormatFileOperation(path, fileType, status string, isNew, isModified, isFailed bool) string {
	switch {
	case isFailed || status == "error":
		return fmt.Sprintf("❌ Failed %s", path)
	case isNew:
		return fmt.Sprintf("✨ Created %s", path)
	case isModified:
		return fmt.Sprintf("📝 Modified %s", path)
	default:
		return fmt.Sprintf("👍 Unchanged %s", path)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	current, total = max(current, 0), max(total, 0)

	percentage := 100.0
	if total > 0 {
		percentage = min(float64(current)/float64(total)*100, 100)
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

// FormatSummary formats the end-of-run counts
func (f *DefaultFileFormatter) FormatSummary(successed, failed int) string {
	if failed > 0 {
		return fmt.Sprintf("⚠️  Published %d, failed %d", successed, failed)
	}
	return fmt.Sprintf("🎉 Published %d", successed)
}
