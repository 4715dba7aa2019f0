package dto

import "time"

// WeekInfo describes a resolved week.
type WeekInfo struct {
	WeekStart  time.Time `json:"weekStart"`
	Timestamp  int64     `json:"timestamp"`
	WeekNumber int       `json:"weekNumber"`
	Label      string    `json:"label"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	Previous   int64     `json:"previous"`
	Next       int64     `json:"next"`
}

// DaySlots groups the catalog slots of one weekday.
type DaySlots struct {
	Day   int      `json:"day"`
	Name  string   `json:"name"`
	Start int      `json:"start"`
	End   int      `json:"end"`
	Count int      `json:"count"`
	Hours []string `json:"hours"`
}

// CatalogResponse exposes the weekly slot grid shape.
type CatalogResponse struct {
	Days       []DaySlots `json:"days"`
	TotalSlots int        `json:"totalSlots"`
}

// ParticipantsResponse lists the roster in index order.
type ParticipantsResponse struct {
	Participants []string `json:"participants"`
}
