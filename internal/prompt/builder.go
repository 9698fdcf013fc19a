// Package prompt builds the per-turn system instruction.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/smilecare-ai/reservation-assistant/internal/booking"
	"github.com/smilecare-ai/reservation-assistant/internal/clinic"
	"github.com/smilecare-ai/reservation-assistant/internal/localtime"
	"github.com/smilecare-ai/reservation-assistant/internal/tools"
)

// DefaultClinicName is used when none is configured.
const DefaultClinicName = "SmileCare Dental Clinic"

// Builder renders the system prompt. Build is a pure function of its
// inputs and the supplied clock reading.
type Builder struct {
	clinicName string
	roster     *clinic.Roster
	policy     booking.TitlePolicy
	loc        *time.Location
}

// NewBuilder creates a builder. A nil policy falls back to the permissive one.
func NewBuilder(clinicName string, roster *clinic.Roster, policy booking.TitlePolicy, loc *time.Location) *Builder {
	if clinicName == "" {
		clinicName = DefaultClinicName
	}
	if policy == nil {
		policy = booking.PermissivePolicy{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Builder{clinicName: clinicName, roster: roster, policy: policy, loc: loc}
}

// Build renders the prompt for the given instant.
func (b *Builder) Build(now time.Time) string {
	local := now.In(b.loc)

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a professional dental reservation assistant for %q.\n", b.clinicName)
	fmt.Fprintf(&sb, "Current Local Time: %s (%s, %s).\n\n",
		localtime.Format(now, b.loc), local.Format("Monday, January 2, 2006 3:04 PM"), local.Format("MST"))

	sb.WriteString("Clinic Rules & Dentist Schedules:\n")
	b.writeRoster(&sb)

	sb.WriteString("\nBooking Rules:\n")
	rules := []string{
		`ALL TIMES ARE LOCAL. When calling tools, generate ISO 8601 strings WITHOUT the 'Z' (e.g., "2026-02-13T10:00:00").`,
		"Reservation Duration: Exactly 1 hour. endTime is always startTime plus one hour.",
		"Title format: " + b.policy.FormatHint(),
		"DO NOT DOUBLE BOOK: One doctor = one patient at a time.",
		"AVAILABILITY: Multiple appointments at the same hour are ONLY okay if they are for DIFFERENT doctors.",
		"ONLY book a doctor for their specialized service on their available days (see schedule above).",
		fmt.Sprintf(`ALWAYS call '%s' first. If you get a "CONFLICT" error from a tool, that doctor is definitely busy. Apologize and offer an alternative.`, tools.GetCalendarEvents),
		`STRICT PRIVACY: NEVER share patient names or details of other appointments. Just say "Dr. [Name] is occupied".`,
		"REQUIRED INFO: Name, Procedure, and Phone Number.",
		fmt.Sprintf("If a tool returns INVALID_TITLE or INVALID_DURATION, fix the arguments and call '%s' again without bothering the patient.", tools.CreateReservation),
	}
	for i, r := range rules {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r)
	}

	sb.WriteString("\nConversation Flow:\n")
	flow := []string{
		"Collect Name, Procedure, Phone.",
		"Check availability for the requested doctor/time.",
		"Recap doctor, patient, procedure, phone, date and time, and ask the patient to confirm.",
		fmt.Sprintf("Only after an explicit yes, call '%s'.", tools.CreateReservation),
	}
	for i, f := range flow {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, f)
	}

	return sb.String()
}

func (b *Builder) writeRoster(sb *strings.Builder) {
	if b.roster == nil || len(b.roster.Dentists) == 0 {
		sb.WriteString("- No dentist schedule is loaded. Do not book until the clinic confirms availability.\n")
		return
	}
	for _, d := range b.roster.Dentists {
		fmt.Fprintf(sb, "- %s: %s", d.Name, d.Specialty)
		if len(d.AvailableDays) > 0 {
			fmt.Fprintf(sb, "; available %s", strings.Join(d.AvailableDays, ", "))
		}
		if d.Hours != "" {
			fmt.Fprintf(sb, "; hours %s", d.Hours)
		}
		if len(d.Services) > 0 {
			fmt.Fprintf(sb, "; services: %s", strings.Join(d.Services, ", "))
		}
		sb.WriteString("\n")
	}
}
