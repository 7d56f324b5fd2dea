package crew

import (
	"fmt"
	"regexp"
)

var placeholderRegex = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Interpolate replaces {key} placeholders with inputs[key].
// A placeholder without input is an error.
func Interpolate(template string, inputs map[string]string) (string, error) {
	var missing error
	ret := placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		if v, found := inputs[key]; found {
			return v
		}
		if missing == nil {
			missing = fmt.Errorf("%w: {%s}", ErrMissingInput, key)
		}
		return match
	})
	if missing != nil {
		return "", missing
	}
	return ret, nil
}
