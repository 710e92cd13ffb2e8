package model

import "time"

type Contest struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type Assignment struct {
	ID        int       `json:"id"`
	ContestID int       `json:"contest_id"`
	UUID      string    `json:"uuid"` // stable external id shared with the builder
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Article   string    `json:"article"` // Markdown source
	CreatedAt time.Time `json:"created_at"`
}

// AssignmentBrief is the listing row on the student home page; the article
// body is deliberately left out.
type AssignmentBrief struct {
	ID        int    `json:"id"`
	ContestID int    `json:"contest_id"`
	UUID      string `json:"uuid"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
}

// ContestResult is one row of a contest's score table.
type ContestResult struct {
	Username        string `json:"username"`
	AssignmentTitle string `json:"assignment_title"`
	Score           int    `json:"score"`
}
