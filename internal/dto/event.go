package dto

import "time"

// CreateEventRequest adds a fixed calendar commitment the planner must avoid.
type CreateEventRequest struct {
	Title     string    `json:"title" validate:"required,max=200"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
}

// EventQuery bounds an event listing to a time range.
type EventQuery struct {
	From time.Time `form:"from" json:"from"`
	To   time.Time `form:"to" json:"to"`
}

// EventResponse is the calendar event representation returned by the API.
type EventResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	CreatedAt time.Time `json:"createdAt"`
}
