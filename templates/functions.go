package templates

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/gradeops/autograder/types"
)

// GetTemplateFunc returns the centralized template functions used across the application
func GetTemplateFunc() template.FuncMap {
	return template.FuncMap{
		"formatDuration": func(d time.Duration) string {
			if d < time.Second {
				return fmt.Sprintf("%dms", d.Milliseconds())
			}
			return d.Truncate(time.Millisecond).String()
		},
		"formatPoints": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
		"formatScore": func(earned, possible float64) string {
			return strconv.FormatFloat(earned, 'f', -1, 64) + "/" + strconv.FormatFloat(possible, 'f', -1, 64)
		},
		"getStatusClass": func(status string) string {
			return strings.ToLower(status)
		},
		"getOutcomeClass": func(passed bool) string {
			if passed {
				return string(types.TestStatusPass)
			}
			return string(types.TestStatusFail)
		},
		"getOutcomeText": func(passed bool) string {
			if passed {
				return "PASS"
			}
			return "FAIL"
		},
	}
}
