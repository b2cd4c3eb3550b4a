package colors

import (
	"net/http"

	"github.com/fatih/color"
)

var (
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
)

// Status colors an http status code for log output: red for errors,
// yellow for redirects and green otherwise.
func Status(code int) string {
	switch {
	case code >= http.StatusBadRequest:
		return Red(code)
	case code >= http.StatusMultipleChoices:
		return Yellow(code)
	default:
		return Green(code)
	}
}
