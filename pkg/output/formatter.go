// Package output renders run reports and transfer progress.
package output

import (
	"fmt"
	"io"

	"github.com/nicholasjvr/workdrive-migration-job/pkg/models"
)

// Formatter renders a finished run report
type Formatter interface {
	// Write renders the report to w
	Write(w io.Writer, report *models.RunReport) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter returns the formatter for a configured format name
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "human", "":
		return NewHumanFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use: human, json)", format)
	}
}

// FormatBytes renders a byte count in human-readable units
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTP"[exp])
}
