package model

import "time"

type CommitStatus string

const (
	CommitStatusPending CommitStatus = "pending"
	CommitStatusSucceed CommitStatus = "succeed"
	CommitStatusFailed  CommitStatus = "failed"
)

// Terminal reports whether a commit has received its build result. Terminal
// commits are never updated again, which makes repeat delivery of a
// build-finished event a no-op.
func (s CommitStatus) Terminal() bool {
	return s == CommitStatusSucceed || s == CommitStatusFailed
}

// Solution is the per-(user, assignment) aggregate. Its score mirrors the
// most recently processed commit build.
type Solution struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	AssignmentID int       `json:"assignment_id"`
	Score        int       `json:"score"` // integer percentage, 0..100
	CreatedAt    time.Time `json:"created_at"`
}

// Commit is one submitted source snapshot. The UUID is generated at
// submission time and is the join key for asynchronous build results.
type Commit struct {
	ID         int          `json:"id"`
	SolutionID int          `json:"solution_id"`
	UUID       string       `json:"uuid"`
	Language   string       `json:"language"`
	Source     string       `json:"source"`
	Status     CommitStatus `json:"status"`
	Score      int          `json:"score"`
	CreatedAt  time.Time    `json:"created_at"`
}

// BriefSolution is one row of the student solutions page: a solution joined
// with its assignment title and the latest commit's build status.
type BriefSolution struct {
	AssignmentID    int          `json:"assignment_id"`
	AssignmentTitle string       `json:"assignment_title"`
	CommitID        int          `json:"commit_id"`
	Score           int          `json:"score"`
	BuildStatus     CommitStatus `json:"build_status"`
}
