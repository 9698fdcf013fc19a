// Package tools exposes the calendar functions the model may call and
// executes its tool-call requests.
package tools

import (
	"github.com/smilecare-ai/reservation-assistant/internal/booking"
	"github.com/smilecare-ai/reservation-assistant/internal/model"
)

// Tool names.
const (
	GetCalendarEvents = "get_calendar_events"
	CreateReservation = "create_reservation"
)

// Definitions returns the tool schemas sent with every completion request.
// The title description carries the active policy's format.
func Definitions(policy booking.TitlePolicy) []model.ToolDefinition {
	titleDesc := `Appointment title naming the doctor as "Dr. <Name>".`
	if policy != nil {
		titleDesc = policy.FormatHint()
	}

	return []model.ToolDefinition{
		{
			Name:        GetCalendarEvents,
			Description: "Get the list of upcoming appointments for the next 7 days to check availability.",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        CreateReservation,
			Description: "Create a one-hour dental appointment in the clinic calendar. Only call after the patient confirmed the recap.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": titleDesc,
					},
					"startTime": map[string]any{
						"type":        "string",
						"description": "Local start time in ISO-8601 without timezone, e.g. 2026-02-13T10:00:00",
					},
					"endTime": map[string]any{
						"type":        "string",
						"description": "Local end time, exactly one hour after startTime, e.g. 2026-02-13T11:00:00",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "Optional notes for the appointment",
					},
				},
				"required": []string{"title", "startTime", "endTime"},
			},
		},
	}
}
