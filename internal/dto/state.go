package dto

// ToggleRequest flips one participant in one slot.
type ToggleRequest struct {
	Day         *int `json:"day" validate:"required,min=0,max=6"`
	Hour        *int `json:"hour" validate:"required,min=0,max=23"`
	Participant *int `json:"participant" validate:"required,min=0"`
}

// RangeRequest selects or clears a contiguous run of catalog slots.
type RangeRequest struct {
	Participant *int `json:"participant" validate:"required,min=0"`
	From        *int `json:"from" validate:"required,min=0"`
	To          *int `json:"to" validate:"required,min=0"`
	Selected    bool `json:"selected"`
}

// StateResponse wraps a serialized selection for enveloped endpoints.
type StateResponse struct {
	MeetingID string           `json:"meetingId"`
	WeekStart int64            `json:"weekStart"`
	State     map[string][]int `json:"state"`
}

// GridSlot is one rendered cell of the weekly grid.
type GridSlot struct {
	Day          int    `json:"day"`
	Hour         int    `json:"hour"`
	HourLabel    string `json:"hourLabel"`
	FirstOfDay   bool   `json:"firstOfDay"`
	Count        int    `json:"count"`
	Color        string `json:"color,omitempty"`
	Participants []int  `json:"participants"`
}

// GridResponse carries everything a renderer needs for one meeting week.
type GridResponse struct {
	MeetingID    string     `json:"meetingId"`
	Week         WeekInfo   `json:"week"`
	Participants []string   `json:"participants"`
	DayNames     []string   `json:"dayNames"`
	Slots        []GridSlot `json:"slots"`
}
