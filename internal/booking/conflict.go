package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/smilecare-ai/reservation-assistant/internal/localtime"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
)

// MatchMode controls how a doctor token is found in existing event titles.
type MatchMode string

const (
	// MatchSubstring blocks on plain containment: "Dr. Smith" also matches
	// "Dr. Smithson".
	MatchSubstring MatchMode = "substring"
	// MatchWord requires the token to end on a word boundary.
	MatchWord MatchMode = "word"
)

// ParseMatchMode maps a config value to a mode, defaulting to substring.
func ParseMatchMode(s string) MatchMode {
	if strings.EqualFold(strings.TrimSpace(s), string(MatchWord)) {
		return MatchWord
	}
	return MatchSubstring
}

// ConflictResult is the outcome of a conflict check.
type ConflictResult struct {
	Conflict bool
	Doctor   string
	// BlockingEvent is set only when Conflict is true. It may name another
	// patient and must not be shown to the user.
	BlockingEvent *model.AppointmentEvent
}

// Evaluator decides whether a candidate appointment double-books a doctor.
// It holds no state between calls.
type Evaluator struct {
	policy        TitlePolicy
	match         MatchMode
	caseSensitive bool
	loc           *time.Location
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithMatchMode sets the doctor token match mode.
func WithMatchMode(m MatchMode) EvaluatorOption {
	return func(e *Evaluator) { e.match = m }
}

// WithCaseSensitive toggles case-sensitive doctor matching.
func WithCaseSensitive(v bool) EvaluatorOption {
	return func(e *Evaluator) { e.caseSensitive = v }
}

// WithLocation sets the zone naive timestamps are read in.
func WithLocation(loc *time.Location) EvaluatorOption {
	return func(e *Evaluator) { e.loc = loc }
}

// NewEvaluator creates an evaluator that extracts doctors with policy.
func NewEvaluator(policy TitlePolicy, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		policy:        policy,
		match:         MatchSubstring,
		caseSensitive: true,
		loc:           time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	return e
}

// Policy returns the title policy in use.
func (e *Evaluator) Policy() TitlePolicy {
	return e.policy
}

// Location returns the zone used for naive timestamps.
func (e *Evaluator) Location() *time.Location {
	return e.loc
}

// HasConflict reports whether any event in existing overlaps candidate and
// names the same doctor. Any blocking event triggers a conflict regardless of
// the order of existing. Existing events with unreadable timestamps are
// skipped; an unreadable candidate is an error.
func (e *Evaluator) HasConflict(candidate model.AppointmentEvent, existing []model.AppointmentEvent) (ConflictResult, error) {
	parts, err := e.policy.Parse(candidate.Title)
	if err != nil {
		return ConflictResult{}, err
	}
	start, end, err := e.Interval(candidate)
	if err != nil {
		return ConflictResult{}, err
	}

	matches := e.matcher(parts.Doctor)
	for i := range existing {
		ev := existing[i]
		evStart, evEnd, err := e.Interval(ev)
		if err != nil {
			continue
		}
		if !Overlaps(start, end, evStart, evEnd) {
			continue
		}
		if matches(ev.Title) {
			return ConflictResult{Conflict: true, Doctor: parts.Doctor, BlockingEvent: &ev}, nil
		}
	}
	return ConflictResult{Doctor: parts.Doctor}, nil
}

// Interval parses an event's start and end in the evaluator's zone.
func (e *Evaluator) Interval(ev model.AppointmentEvent) (time.Time, time.Time, error) {
	start, err := localtime.Parse(ev.Start, e.loc)
	if err != nil {
		return time.Time{}, time.Time{}, invalidTime("Invalid startTime %q: use local time like 2026-02-13T10:00:00.", ev.Start)
	}
	end, err := localtime.Parse(ev.End, e.loc)
	if err != nil {
		return time.Time{}, time.Time{}, invalidTime("Invalid endTime %q: use local time like 2026-02-13T11:00:00.", ev.End)
	}
	return start, end, nil
}

func (e *Evaluator) matcher(doctor string) func(title string) bool {
	expr := doctorExpr(doctor)
	if e.match == MatchWord {
		expr += `\b`
	}
	if !e.caseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.MustCompile(expr).MatchString
}

// doctorExpr turns a doctor token into a pattern that accepts any run of
// whitespace between words and any case on the "Dr." prefix. The name itself
// keeps its case unless matching is case-insensitive.
func doctorExpr(doctor string) string {
	words := strings.Fields(doctor)
	parts := make([]string, 0, len(words))
	for i, w := range words {
		if i == 0 && strings.EqualFold(w, "dr.") {
			parts = append(parts, `(?i:dr\.)`)
			continue
		}
		parts = append(parts, regexp.QuoteMeta(w))
	}
	return strings.Join(parts, `\s+`)
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// String describes the result for logs without patient details.
func (r ConflictResult) String() string {
	if !r.Conflict {
		return fmt.Sprintf("%s free", r.Doctor)
	}
	return fmt.Sprintf("%s busy", r.Doctor)
}
