package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare-ai/reservation-assistant/internal/booking"
	"github.com/smilecare-ai/reservation-assistant/internal/clinic"
)

func testRoster() *clinic.Roster {
	return &clinic.Roster{Dentists: []clinic.Dentist{
		{Name: "Dr. Smith", Specialty: "General Dentistry", AvailableDays: []string{"Monday", "Friday"}, Hours: "09:00-17:00"},
		{Name: "Dr. Jones", Specialty: "Orthodontics", Services: []string{"Braces"}},
	}}
}

func TestBuildEmbedsClockAndRoster(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	b := NewBuilder("", testRoster(), booking.StrictPolicy{}, ny)
	out := b.Build(time.Date(2026, 2, 13, 15, 30, 0, 0, time.UTC))

	assert.Contains(t, out, `"SmileCare Dental Clinic"`)
	assert.Contains(t, out, "Current Local Time: 2026-02-13T10:30:00 (Friday, February 13, 2026 10:30 AM, EST)")
	assert.Contains(t, out, "- Dr. Smith: General Dentistry; available Monday, Friday; hours 09:00-17:00")
	assert.Contains(t, out, "- Dr. Jones: Orthodontics; services: Braces")
	assert.Contains(t, out, "Appointment with Dr. <Name> for <Patient> (Reason: <Procedure>) - <Phone>")
}

func TestBuildRules(t *testing.T) {
	out := NewBuilder("Bright Teeth", testRoster(), booking.PermissivePolicy{}, time.UTC).Build(time.Now())

	for _, want := range []string{
		"WITHOUT the 'Z'",
		"Exactly 1 hour",
		"DO NOT DOUBLE BOOK",
		"DIFFERENT doctors",
		"available days",
		"ALWAYS call 'get_calendar_events' first",
		`"CONFLICT"`,
		`"Dr. [Name] is occupied"`,
		"REQUIRED INFO: Name, Procedure, and Phone Number.",
		"ask the patient to confirm",
		"Only after an explicit yes, call 'create_reservation'.",
	} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, `"Bright Teeth"`)
}

func TestBuildIsDeterministic(t *testing.T) {
	b := NewBuilder("", testRoster(), nil, time.UTC)
	now := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, b.Build(now), b.Build(now))
	assert.NotEqual(t, b.Build(now), b.Build(now.Add(time.Minute)))
}

func TestBuildWithoutRoster(t *testing.T) {
	out := NewBuilder("", nil, nil, time.UTC).Build(time.Now())
	assert.Contains(t, out, "No dentist schedule is loaded")
}
