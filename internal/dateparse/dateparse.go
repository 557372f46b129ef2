// Package dateparse turns user-entered deadlines into YYYY-MM-DD dates.
// It accepts ISO dates and English phrases such as "next friday" or
// "in 3 weeks".
package dateparse

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/gradtrack/gradtrack/internal/types"
)

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Parse resolves input relative to now and returns it in types.DateLayout.
// Empty input yields "".
func Parse(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	if t, err := time.Parse(types.DateLayout, input); err == nil {
		return t.Format(types.DateLayout), nil
	}

	result, err := parser.Parse(input, now)
	if err != nil {
		return "", fmt.Errorf("failed to parse date %q: %w", input, err)
	}
	if result == nil {
		return "", fmt.Errorf("unrecognized date %q: use YYYY-MM-DD or a phrase like \"next friday\"", input)
	}
	return result.Time.Format(types.DateLayout), nil
}

// ParsePtr is Parse for optional fields: empty input yields nil.
func ParsePtr(input string, now time.Time) (*string, error) {
	s, err := Parse(input, now)
	if err != nil {
		return nil, err
	}
	return types.Date(s), nil
}
