package status

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	typeWidth   = 15 // Width for file type
	statusWidth = 15 // Width for status text
)

// 🎯 FormatFileOperation formats a file operation for display
func FormatFileOperation(path, fileType, status string, isNew, isModified, isFailed bool) string {
	var prefix string
	switch {
	case isFailed:
		prefix = color.RedString("✗")
	case isNew:
		prefix = color.GreenString("✓")
	case isModified:
		prefix = color.YellowString("⟳")
	default:
		prefix = color.HiBlackString("-")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, path)
	typePart := fmt.Sprintf("%-*s", typeWidth, fileType)
	statusPart := fmt.Sprintf("%-*s", statusWidth, status)

	return strings.TrimRight(fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		typePart,
		statusPart,
	), " ")
}

// FormatFileInfo renders one tracked file as a table line.
func FormatFileInfo(info FileInfo) string {
	return FormatFileOperation(
		info.Path,
		"document",
		info.Status.String(),
		info.Status == StatusNew,
		info.Status == StatusModified,
		info.Status == StatusFailed,
	)
}

// 📋 WriteTable prints one line per file
func WriteTable(w io.Writer, files []FileInfo) error {
	for _, info := range files {
		if _, err := fmt.Fprintln(w, FormatFileInfo(info)); err != nil {
			return err
		}
	}
	return nil
}
