package timerange

import (
	"errors"
	"testing"
	"time"

	"github.com/de-tools/peg-lens/pkg/models/domain"
)

func TestResolver_Resolve_ShouldParseWindowExpression(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	r := NewResolver(loc)

	tr, err := r.Resolve("2025-06-01 00:00:00~2025-06-02 00:00:00")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !tr.Start.Before(tr.End) {
		t.Errorf("expected start before end, got %v / %v", tr.Start, tr.End)
	}
	if got := tr.Start.Location().String(); got != "KST" {
		t.Errorf("expected KST location, got %s", got)
	}
	if tr.Duration() != 24*time.Hour {
		t.Errorf("expected 24h duration, got %v", tr.Duration())
	}
}

func TestResolver_Resolve_ShouldKeepExplicitOffset(t *testing.T) {
	r := NewResolver(time.UTC)

	tr, err := r.Resolve("2025-06-01 00:00:00 +09:00~2025-06-01 06:00:00 +09:00")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_, offset := tr.Start.Zone()
	if offset != 9*60*60 {
		t.Errorf("expected +09:00 offset, got %d seconds", offset)
	}
}

func TestResolver_Resolve_ShouldRejectMalformedInput(t *testing.T) {
	r := NewResolver(time.UTC)

	cases := []struct {
		name string
		expr string
	}{
		{"no delimiter", "2025-06-01 00:00:00"},
		{"two delimiters", "a~b~c"},
		{"garbage start", "not a date~2025-06-02 00:00:00"},
		{"month out of range", "2025-13-01 00:00:00~2025-12-02 00:00:00"},
		{"start equals end", "2025-06-01 00:00:00~2025-06-01 00:00:00"},
		{"start after end", "2025-06-02 00:00:00~2025-06-01 00:00:00"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Resolve(tc.expr)
			if err == nil {
				t.Fatalf("expected error for %q", tc.expr)
			}
			var parseErr *domain.ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("expected ParseError, got %T", err)
			}
		})
	}
}

func TestResolver_Resolve_NilLocationDefaultsToUTC(t *testing.T) {
	r := NewResolver(nil)

	tr, err := r.Resolve("2025-06-01 00:00:00~2025-06-02 00:00:00")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tr.Start.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", tr.Start.Location())
	}
}
