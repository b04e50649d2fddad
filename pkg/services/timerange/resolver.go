package timerange

import (
	"strings"
	"time"

	"github.com/de-tools/peg-lens/pkg/models/domain"
)

// Delimiter separates the start and end moments in a window expression,
// e.g. "2025-06-01 00:00:00~2025-06-02 00:00:00".
const Delimiter = "~"

var layouts = []string{
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
}

// Resolver turns window expressions into validated time ranges.
type Resolver struct {
	loc *time.Location
}

// NewResolver creates a resolver. loc applies to moments written without an
// explicit offset; nil defaults to UTC.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc}
}

// Resolve parses expr into a TimeRange. It fails with a ParseError when the
// expression does not match the grammar, a calendar field is out of range, or
// start is not strictly before end.
func (r *Resolver) Resolve(expr string) (domain.TimeRange, error) {
	parts := strings.Split(expr, Delimiter)
	if len(parts) != 2 {
		return domain.TimeRange{}, &domain.ParseError{
			Input:  expr,
			Reason: "expected exactly one '" + Delimiter + "' delimiter",
		}
	}

	start, err := r.parseMoment(strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.TimeRange{}, &domain.ParseError{Input: expr, Reason: "start: " + err.Error()}
	}
	end, err := r.parseMoment(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.TimeRange{}, &domain.ParseError{Input: expr, Reason: "end: " + err.Error()}
	}

	if !start.Before(end) {
		return domain.TimeRange{}, &domain.ParseError{Input: expr, Reason: "start must be before end"}
	}

	return domain.TimeRange{Start: start, End: end}, nil
}

func (r *Resolver) parseMoment(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, r.loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
