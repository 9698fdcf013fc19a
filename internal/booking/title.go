// Package booking holds the clinic's reservation rules: title formats,
// double-booking detection and slot duration.
package booking

import (
	"fmt"
	"regexp"
	"strings"
)

// Title policy names.
const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

// TitleParts are the fields carried by a reservation title. Only Doctor is
// guaranteed; the permissive policy leaves the rest empty.
type TitleParts struct {
	Doctor  string
	Patient string
	Reason  string
	Phone   string
}

// TitlePolicy validates reservation titles and extracts the doctor.
type TitlePolicy interface {
	Name() string
	Parse(title string) (TitleParts, error)
	// FormatHint is the instruction given to the model for building titles.
	FormatHint() string
}

// NewTitlePolicy selects a policy by name.
func NewTitlePolicy(name string) (TitlePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyPermissive, "":
		return PermissivePolicy{}, nil
	case PolicyStrict:
		return StrictPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown title policy %q", name)
	}
}

var doctorPattern = regexp.MustCompile(`(?i)\bdr\.\s+([\p{L}][\p{L}'-]*)`)

// PermissivePolicy accepts any title mentioning "Dr. <Name>".
type PermissivePolicy struct{}

// Name returns the policy name.
func (PermissivePolicy) Name() string { return PolicyPermissive }

// Parse extracts the first "Dr. <Name>" mention as written in the title.
func (PermissivePolicy) Parse(title string) (TitleParts, error) {
	m := doctorPattern.FindString(title)
	if m == "" {
		return TitleParts{}, &InvalidTitleError{
			Title:   title,
			Policy:  PolicyPermissive,
			Message: `Invalid title: it must name the doctor as "Dr. <Name>". Correct the title and call create_reservation again.`,
		}
	}
	return TitleParts{Doctor: strings.TrimSpace(m)}, nil
}

// FormatHint describes the accepted format.
func (PermissivePolicy) FormatHint() string {
	return `The title MUST include the doctor as "Dr. <Name>", e.g. "Appointment with Dr. Smith for John Doe - 555-1234".`
}

const canonicalTemplate = "Appointment with Dr. %s for %s (Reason: %s) - %s"

var strictPattern = regexp.MustCompile(`^Appointment with Dr\. (\S.*?) for (\S.*?) \(Reason: (\S.*?)\) - (\+?[0-9][0-9 ().-]*[0-9])$`)

// StrictPolicy requires the canonical template
// "Appointment with Dr. <Name> for <Patient> (Reason: <Procedure>) - <Phone>".
type StrictPolicy struct{}

// Name returns the policy name.
func (StrictPolicy) Name() string { return PolicyStrict }

// Parse matches the canonical template.
func (StrictPolicy) Parse(title string) (TitleParts, error) {
	m := strictPattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return TitleParts{}, &InvalidTitleError{
			Title:  title,
			Policy: PolicyStrict,
			Message: fmt.Sprintf(`Invalid title format. Use exactly: "%s" and call create_reservation again.`,
				fmt.Sprintf(canonicalTemplate, "<Name>", "<Patient>", "<Procedure>", "<Phone>")),
		}
	}
	return TitleParts{
		Doctor:  "Dr. " + m[1],
		Patient: m[2],
		Reason:  m[3],
		Phone:   m[4],
	}, nil
}

// FormatHint describes the canonical template.
func (StrictPolicy) FormatHint() string {
	return fmt.Sprintf(`The title MUST be exactly: "%s", e.g. "%s".`,
		fmt.Sprintf(canonicalTemplate, "<Name>", "<Patient>", "<Procedure>", "<Phone>"),
		FormatTitle(TitleParts{Doctor: "Dr. Smith", Patient: "John Doe", Reason: "Cleaning", Phone: "555-1234"}))
}

// FormatTitle renders parts with the canonical template. Doctor may be given
// with or without the "Dr. " prefix.
func FormatTitle(p TitleParts) string {
	name := strings.TrimSpace(p.Doctor)
	name = strings.TrimSpace(strings.TrimPrefix(name, "Dr."))
	return fmt.Sprintf(canonicalTemplate, name, p.Patient, p.Reason, p.Phone)
}
