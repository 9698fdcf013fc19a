package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTitlePolicy(t *testing.T) {
	p, err := NewTitlePolicy("Permissive")
	require.NoError(t, err)
	assert.Equal(t, PolicyPermissive, p.Name())

	p, err = NewTitlePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyPermissive, p.Name())

	p, err = NewTitlePolicy(" STRICT ")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p.Name())

	_, err = NewTitlePolicy("lenient")
	assert.Error(t, err)
}

func TestPermissivePolicyParse(t *testing.T) {
	tests := []struct {
		title  string
		doctor string
		ok     bool
	}{
		{"Appointment with Dr. Smith for J. Doe - 555-1234", "Dr. Smith", true},
		{"Dr. Jones checkup", "Dr. Jones", true},
		{"cleaning with dr. O'Neil", "dr. O'Neil", true},
		{"Appointment with DR.  Smith for J. Doe", "DR.  Smith", true},
		{"Appointment with Smith for J. Doe", "", false},
		{"Dr.Smith", "", false},
		{"", "", false},
	}

	p := PermissivePolicy{}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			parts, err := p.Parse(tt.title)
			if !tt.ok {
				var titleErr *InvalidTitleError
				require.True(t, errors.As(err, &titleErr))
				assert.Equal(t, CodeInvalidTitle, titleErr.Code())
				assert.Contains(t, titleErr.Error(), "create_reservation again")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.doctor, parts.Doctor)
		})
	}
}

func TestStrictPolicyRoundTrip(t *testing.T) {
	cases := []TitleParts{
		{Doctor: "Dr. Smith", Patient: "John Doe", Reason: "Cleaning", Phone: "555-1234"},
		{Doctor: "Dr. Jones", Patient: "Ana María López", Reason: "Root canal", Phone: "+1 (555) 123-4567"},
		{Doctor: "Dr. Lee", Patient: "A. Lee", Reason: "Whitening", Phone: "5559999"},
	}

	p := StrictPolicy{}
	for _, want := range cases {
		title := FormatTitle(want)
		got, err := p.Parse(title)
		require.NoError(t, err, title)
		assert.Equal(t, want, got)
	}
}

func TestFormatTitleAcceptsBareName(t *testing.T) {
	title := FormatTitle(TitleParts{Doctor: "Smith", Patient: "John Doe", Reason: "Cleaning", Phone: "555-1234"})
	assert.Equal(t, "Appointment with Dr. Smith for John Doe (Reason: Cleaning) - 555-1234", title)
}

func TestStrictPolicyRejects(t *testing.T) {
	p := StrictPolicy{}
	for _, title := range []string{
		"Appointment with Dr. Smith for J. Doe - 555-1234",
		"Appointment with Dr. Smith for J. Doe (Reason: Cleaning)",
		"Appointment with Dr. Smith for J. Doe (Reason: Cleaning) - call me",
		"Meeting with Dr. Smith for J. Doe (Reason: Cleaning) - 555-1234",
	} {
		_, err := p.Parse(title)
		var titleErr *InvalidTitleError
		require.True(t, errors.As(err, &titleErr), title)
		assert.Equal(t, PolicyStrict, titleErr.Policy)
		assert.Contains(t, titleErr.Error(), "Appointment with Dr. <Name> for <Patient> (Reason: <Procedure>) - <Phone>")
	}
}

func TestFormatHints(t *testing.T) {
	assert.Contains(t, StrictPolicy{}.FormatHint(), "Appointment with Dr. Smith for John Doe (Reason: Cleaning) - 555-1234")
	assert.Contains(t, PermissivePolicy{}.FormatHint(), "Dr. <Name>")
}
