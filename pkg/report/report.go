// Package report renders evaluation runs and comparisons for humans and
// machines.
package report

import "ragbench/pkg/core"

// Reporter writes one evaluation run.
type Reporter interface {
	Report(out core.RunOutput) error
}

const (
	FormatJSON     = "json"
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)
