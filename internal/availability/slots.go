package availability

import "strconv"

// DaysPerWeek is the number of day columns in a grid; day 0 is Monday.
const DaysPerWeek = 7

// HourRange is an inclusive range of bookable hours.
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// HoursByDay holds the operating hours for Monday through Sunday.
var HoursByDay = [DaysPerWeek]HourRange{
	{Start: 10, End: 16},
	{Start: 10, End: 20},
	{Start: 10, End: 20},
	{Start: 10, End: 20},
	{Start: 10, End: 20},
	{Start: 10, End: 19},
	{Start: 10, End: 19},
}

// DayNames are the short column headings, Monday first.
var DayNames = [DaysPerWeek]string{"E", "T", "K", "N", "R", "L", "P"}

// Slot is one addressable (day, hour) cell of the weekly grid.
type Slot struct {
	Day       int    `json:"day"`
	Hour      int    `json:"hour"`
	HourLabel string `json:"hourLabel"`
}

// Key returns the slot's selection key.
func (s Slot) Key() SlotKey {
	return SlotKey{Day: s.Day, Hour: s.Hour}
}

// BuildSlots enumerates every slot of the week, day by day and hour ascending.
// The result is rebuilt on each call.
func BuildSlots() []Slot {
	slots := make([]Slot, 0, SlotCount())
	for day, hours := range HoursByDay {
		for hour := hours.Start; hour <= hours.End; hour++ {
			slots = append(slots, Slot{Day: day, Hour: hour, HourLabel: strconv.Itoa(hour)})
		}
	}
	return slots
}

// SlotCount returns the total number of slots in a week.
func SlotCount() int {
	total := 0
	for day := range HoursByDay {
		total += DaySlotCount(day)
	}
	return total
}

// DaySlotCount returns the number of hourly slots on day.
func DaySlotCount(day int) int {
	hours := HoursByDay[day]
	return hours.End - hours.Start + 1
}

// IsFirstHourOfDay reports whether s opens its day.
func IsFirstHourOfDay(s Slot) bool {
	return s.Hour == HoursByDay[s.Day].Start
}

// ValidSlot reports whether (day, hour) lies inside the catalog.
func ValidSlot(day, hour int) bool {
	if day < 0 || day >= DaysPerWeek {
		return false
	}
	hours := HoursByDay[day]
	return hour >= hours.Start && hour <= hours.End
}
