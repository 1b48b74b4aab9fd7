// Package templates renders the HTML fragments returned to HTMX requests.
// Components are written in .templ files; run `templ generate` after
// editing them.
package templates

import (
	"strconv"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/core"
)

func errorCount(result *core.ParseResult) int {
	errs, _ := result.Counts()
	return errs
}

func warningCount(result *core.ParseResult) int {
	_, warnings := result.Counts()
	return warnings
}

// rowNumber leaves document-level findings blank.
func rowNumber(row int) string {
	if row <= 0 {
		return ""
	}
	return strconv.Itoa(row)
}
