// Package query filters, searches and orders application lists for display.
// It never modifies its input.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/gradtrack/gradtrack/internal/types"
)

// SortKey names an ordering.
type SortKey string

const (
	SortStored     SortKey = "stored"
	SortDeadline   SortKey = "deadline"
	SortUniversity SortKey = "university"
	SortStatus     SortKey = "status"
)

// SortKeys lists the accepted orderings.
var SortKeys = []SortKey{SortStored, SortDeadline, SortUniversity, SortStatus}

// ParseSortKey validates s.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortStored, nil
	}
	for _, k := range SortKeys {
		if string(k) == strings.ToLower(s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort %q: want one of %v", s, SortKeys)
}

// Options selects and orders applications. Zero value returns everything
// in stored order with pinned applications first.
type Options struct {
	Statuses     []types.Status
	Tags         []string // all must be present
	ProgramTypes []types.ProgramType
	PinnedOnly   bool
	Search       string
	Sort         SortKey
	Reverse      bool

	// Unpinned disables floating pinned applications to the top.
	Unpinned bool
}

// Apply returns the matching applications in the requested order.
func Apply(apps []types.Application, opts Options) []types.Application {
	out := make([]types.Application, 0, len(apps))
	for _, app := range apps {
		if Match(app, opts) {
			out = append(out, app)
		}
	}

	compare := compareBy(opts.Sort)
	slices.SortStableFunc(out, func(a, b types.Application) int {
		if !opts.Unpinned && a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		c := compare(a, b)
		if opts.Reverse {
			c = -c
		}
		return c
	})
	return out
}

// Match reports whether app passes every filter in opts.
func Match(app types.Application, opts Options) bool {
	if opts.PinnedOnly && !app.IsPinned {
		return false
	}
	if len(opts.Statuses) > 0 && !slices.Contains(opts.Statuses, app.Status) {
		return false
	}
	if len(opts.ProgramTypes) > 0 && !slices.Contains(opts.ProgramTypes, app.ProgramType) {
		return false
	}
	for _, tag := range opts.Tags {
		if !slices.ContainsFunc(app.Tags, func(t string) bool { return strings.EqualFold(t, tag) }) {
			return false
		}
	}
	if q := strings.TrimSpace(opts.Search); q != "" && !matchesSearch(app, q) {
		return false
	}
	return true
}

func matchesSearch(app types.Application, q string) bool {
	q = strings.ToLower(q)
	fields := []string{app.UniversityName, app.ProgramName, app.Department, app.Location, app.Notes}
	fields = append(fields, app.Tags...)
	for _, c := range app.FacultyContacts {
		fields = append(fields, c.Name, c.ResearchArea)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func compareBy(key SortKey) func(a, b types.Application) int {
	switch key {
	case SortDeadline:
		return func(a, b types.Application) int {
			return compareDeadline(a.Deadline, b.Deadline)
		}
	case SortUniversity:
		return func(a, b types.Application) int {
			if c := cmp.Compare(strings.ToLower(a.UniversityName), strings.ToLower(b.UniversityName)); c != 0 {
				return c
			}
			return cmp.Compare(strings.ToLower(a.ProgramName), strings.ToLower(b.ProgramName))
		}
	case SortStatus:
		return func(a, b types.Application) int {
			return cmp.Compare(a.Status.Rank(), b.Status.Rank())
		}
	default:
		return func(types.Application, types.Application) int { return 0 }
	}
}

// compareDeadline orders YYYY-MM-DD strings lexically, missing deadlines last.
func compareDeadline(a, b *string) int {
	switch {
	case a == nil || *a == "":
		if b == nil || *b == "" {
			return 0
		}
		return 1
	case b == nil || *b == "":
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}
