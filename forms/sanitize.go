package forms

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// plainText strips every tag from user input and returns the remaining text
// unescaped, so what is stored and measured is what the user typed minus
// markup. Rendering is responsible for escaping.
func plainText(input string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(input)))
}
