package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare-ai/reservation-assistant/internal/model"
)

func event(title, start, end string) model.AppointmentEvent {
	return model.AppointmentEvent{Title: title, Start: start, End: end}
}

func newTestEvaluator(opts ...EvaluatorOption) *Evaluator {
	opts = append([]EvaluatorOption{WithLocation(time.UTC)}, opts...)
	return NewEvaluator(PermissivePolicy{}, opts...)
}

func TestHasConflict(t *testing.T) {
	existing := []model.AppointmentEvent{
		event("Appointment with Dr. Smith for J. Doe - 555-1234", "2026-02-13T10:00:00", "2026-02-13T11:00:00"),
	}

	tests := []struct {
		name     string
		cand     model.AppointmentEvent
		conflict bool
	}{
		{"same slot same doctor", event("Appointment with Dr. Smith for A. Lee - 555-9999", "2026-02-13T10:00:00", "2026-02-13T11:00:00"), true},
		{"partial overlap", event("Dr. Smith for A. Lee", "2026-02-13T10:30:00", "2026-02-13T11:30:00"), true},
		{"contained", event("Dr. Smith for A. Lee", "2026-02-13T10:15:00", "2026-02-13T10:45:00"), true},
		{"ends at start", event("Dr. Smith for A. Lee", "2026-02-13T09:00:00", "2026-02-13T10:00:00"), false},
		{"starts at end", event("Dr. Smith for A. Lee", "2026-02-13T11:00:00", "2026-02-13T12:00:00"), false},
		{"other doctor", event("Dr. Jones for A. Lee", "2026-02-13T10:00:00", "2026-02-13T11:00:00"), false},
		{"other day", event("Dr. Smith for A. Lee", "2026-02-14T10:00:00", "2026-02-14T11:00:00"), false},
	}

	e := newTestEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.HasConflict(tt.cand, existing)
			require.NoError(t, err)
			assert.Equal(t, tt.conflict, res.Conflict)
			if tt.conflict {
				require.NotNil(t, res.BlockingEvent)
				assert.Equal(t, existing[0], *res.BlockingEvent)
			} else {
				assert.Nil(t, res.BlockingEvent)
			}
		})
	}
}

func TestHasConflictDoctorAsWritten(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		cand     string
		conflict bool
	}{
		{"lowercase both", "Appointment with dr. smith for J. Doe", "Appointment with dr. smith for A. Lee", true},
		{"uppercase prefix both", "Appointment with DR. Smith for J. Doe", "Appointment with DR. Smith for A. Lee", true},
		{"double space both", "Appointment with Dr.  Smith for J. Doe", "Appointment with Dr.  Smith for A. Lee", true},
		{"prefix case differs", "Appointment with Dr. Smith for J. Doe", "Appointment with DR. Smith for A. Lee", true},
		{"spacing differs", "Appointment with Dr. Smith for J. Doe", "Appointment with Dr.   Smith for A. Lee", true},
		{"line break in existing", "Appointment with Dr.\nSmith for J. Doe", "Dr. Smith for A. Lee", true},
		{"name case differs", "Appointment with Dr. Smith for J. Doe", "Appointment with dr. smith for A. Lee", false},
	}

	e := newTestEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := []model.AppointmentEvent{event(tt.existing, "2026-02-13T10:00:00", "2026-02-13T11:00:00")}
			res, err := e.HasConflict(event(tt.cand, "2026-02-13T10:00:00", "2026-02-13T11:00:00"), existing)
			require.NoError(t, err)
			assert.Equal(t, tt.conflict, res.Conflict)
		})
	}

	insensitive := newTestEvaluator(WithCaseSensitive(false))
	res, err := insensitive.HasConflict(
		event("Appointment with dr. smith for A. Lee", "2026-02-13T10:00:00", "2026-02-13T11:00:00"),
		[]model.AppointmentEvent{event("Appointment with Dr. Smith for J. Doe", "2026-02-13T10:00:00", "2026-02-13T11:00:00")},
	)
	require.NoError(t, err)
	assert.True(t, res.Conflict)
}

func TestHasConflictOrderIndependent(t *testing.T) {
	cand := event("Dr. Smith for A. Lee", "2026-02-13T10:00:00", "2026-02-13T11:00:00")
	existing := []model.AppointmentEvent{
		event("Dr. Jones for B. Kim", "2026-02-13T10:00:00", "2026-02-13T11:00:00"),
		event("Dr. Smith for C. Wu", "2026-02-13T15:00:00", "2026-02-13T16:00:00"),
		event("Dr. Smith for J. Doe", "2026-02-13T10:30:00", "2026-02-13T11:30:00"),
	}

	e := newTestEvaluator()
	forward, err := e.HasConflict(cand, existing)
	require.NoError(t, err)

	reversed := []model.AppointmentEvent{existing[2], existing[1], existing[0]}
	backward, err := e.HasConflict(cand, reversed)
	require.NoError(t, err)

	assert.True(t, forward.Conflict)
	assert.True(t, backward.Conflict)
	assert.Equal(t, "Dr. Smith", forward.Doctor)
}

func TestHasConflictMatchModes(t *testing.T) {
	cand := event("Dr. Smith for A. Lee", "2026-02-13T10:00:00", "2026-02-13T11:00:00")
	smithson := []model.AppointmentEvent{event("Dr. Smithson for J. Doe", "2026-02-13T10:00:00", "2026-02-13T11:00:00")}
	junior := []model.AppointmentEvent{event("Dr. Smith Jr. for J. Doe", "2026-02-13T10:00:00", "2026-02-13T11:00:00")}
	lower := []model.AppointmentEvent{event("dr. smith for J. Doe", "2026-02-13T10:00:00", "2026-02-13T11:00:00")}

	substring := newTestEvaluator()
	res, err := substring.HasConflict(cand, smithson)
	require.NoError(t, err)
	assert.True(t, res.Conflict, "substring containment blocks on a longer name")

	word := newTestEvaluator(WithMatchMode(MatchWord))
	res, err = word.HasConflict(cand, smithson)
	require.NoError(t, err)
	assert.False(t, res.Conflict)

	res, err = word.HasConflict(cand, junior)
	require.NoError(t, err)
	assert.True(t, res.Conflict)

	res, err = substring.HasConflict(cand, lower)
	require.NoError(t, err)
	assert.False(t, res.Conflict)

	insensitive := newTestEvaluator(WithCaseSensitive(false))
	res, err = insensitive.HasConflict(cand, lower)
	require.NoError(t, err)
	assert.True(t, res.Conflict)

	insensitiveWord := newTestEvaluator(WithMatchMode(MatchWord), WithCaseSensitive(false))
	res, err = insensitiveWord.HasConflict(cand, lower)
	require.NoError(t, err)
	assert.True(t, res.Conflict)
}

func TestHasConflictErrors(t *testing.T) {
	e := newTestEvaluator()

	_, err := e.HasConflict(event("Cleaning for A. Lee", "2026-02-13T10:00:00", "2026-02-13T11:00:00"), nil)
	var titleErr *InvalidTitleError
	assert.True(t, errors.As(err, &titleErr))

	_, err = e.HasConflict(event("Dr. Smith for A. Lee", "tomorrow", "2026-02-13T11:00:00"), nil)
	var timeErr *InvalidTimeError
	require.True(t, errors.As(err, &timeErr))
	assert.Equal(t, CodeInvalidTime, timeErr.Code())
}

func TestHasConflictSkipsUnreadableExisting(t *testing.T) {
	e := newTestEvaluator()
	existing := []model.AppointmentEvent{
		event("Dr. Smith for J. Doe", "", ""),
		event("Dr. Smith for J. Doe", "2026-02-13T12:00:00", "2026-02-13T13:00:00"),
	}
	res, err := e.HasConflict(event("Dr. Smith for A. Lee", "2026-02-13T10:00:00", "2026-02-13T11:00:00"), existing)
	require.NoError(t, err)
	assert.False(t, res.Conflict)
}

func TestHasConflictZonedExisting(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	e := NewEvaluator(PermissivePolicy{}, WithLocation(ny))
	existing := []model.AppointmentEvent{
		event("Dr. Smith for J. Doe", "2026-02-13T15:00:00Z", "2026-02-13T16:00:00Z"),
	}
	res, err := e.HasConflict(event("Dr. Smith for A. Lee", "2026-02-13T10:00:00", "2026-02-13T11:00:00"), existing)
	require.NoError(t, err)
	assert.True(t, res.Conflict)
}

func TestConflictErrorNamesOnlyDoctor(t *testing.T) {
	err := &ConflictError{Doctor: "Dr. Smith"}
	assert.Equal(t, "Dr. Smith is busy at that time. Please suggest another slot.", err.Error())
	assert.Equal(t, CodeConflict, err.Code())
}

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 2, 13, h, 0, 0, 0, time.UTC) }
	assert.True(t, Overlaps(at(10), at(11), at(10), at(11)))
	assert.True(t, Overlaps(at(9), at(12), at(10), at(11)))
	assert.False(t, Overlaps(at(10), at(11), at(11), at(12)))
	assert.False(t, Overlaps(at(11), at(12), at(10), at(11)))
}
