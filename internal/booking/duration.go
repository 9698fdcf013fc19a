package booking

import (
	"time"

	"github.com/smilecare-ai/reservation-assistant/internal/localtime"
)

// SlotLength is the fixed appointment length.
const SlotLength = time.Hour

// CheckDuration validates a reservation interval. End must follow start;
// when exact is set the interval must be exactly one SlotLength.
func CheckDuration(start, end time.Time, exact bool) error {
	if !end.After(start) {
		return invalidTime("endTime must be after startTime.")
	}
	if exact && end.Sub(start) != SlotLength {
		return invalidDuration("Appointments last exactly one hour: set endTime to %s.",
			start.Add(SlotLength).Format(localtime.Layout))
	}
	return nil
}
