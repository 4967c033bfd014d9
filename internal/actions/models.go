// Package actions manages corrective action plans. Records move through
// Open → InProgress → Closed by authorized calls only; nothing transitions
// automatically.
package actions

import "time"

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusClosed     Status = "Closed"
)

// transitions holds the legal forward edges. Closed is terminal.
var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress},
	StatusInProgress: {StatusClosed},
	StatusClosed:     {},
}

// CanTransition reports whether from → to is a legal step.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

type Action struct {
	ID               int64      `db:"id" json:"id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	Area             string     `db:"area" json:"area"`
	ResponsibleName  string     `db:"responsible_name" json:"responsibleName"`
	ResponsibleEmail string     `db:"responsible_email" json:"responsibleEmail"`
	DueDate          time.Time  `db:"due_date" json:"dueDate"`
	Status           Status     `db:"status" json:"status"`
	CreatedBy        int64      `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	ClosedAt         *time.Time `db:"closed_at" json:"closedAt,omitempty"`
}

type CreateRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Area             string `json:"area"`
	ResponsibleName  string `json:"responsibleName"`
	ResponsibleEmail string `json:"responsibleEmail"`
	DueDate          string `json:"dueDate"`
}

type TransitionRequest struct {
	Status string `json:"status"`
}
