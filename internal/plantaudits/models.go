// Package plantaudits records quality audits: a header plus finding rows and
// optional file attachments, written atomically.
package plantaudits

import "time"

type Audit struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Area        string    `db:"area" json:"area"`
	AuditDate   time.Time `db:"audit_date" json:"auditDate"`
	CreatedBy   int64     `db:"created_by" json:"createdBy"`
	CreatorName string    `db:"creator_name" json:"creatorName"`
	// Visible controls whether non-privileged roles see the record in lists.
	Visible   bool      `db:"visible" json:"visible"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Finding struct {
	ID          int64  `db:"id" json:"id"`
	AuditID     int64  `db:"audit_id" json:"auditId"`
	Severity    string `db:"severity" json:"severity"`
	Description string `db:"description" json:"description"`
}

type Attachment struct {
	ID       int64  `db:"id" json:"id"`
	AuditID  int64  `db:"audit_id" json:"auditId"`
	FileName string `db:"file_name" json:"fileName"`
	RelPath  string `db:"rel_path" json:"relPath"`
}

// Detail is the named multi-recordset contract for one audit: callers bind
// by field, never by position.
type Detail struct {
	Header      Audit        `json:"header"`
	Findings    []Finding    `json:"findings"`
	Attachments []Attachment `json:"attachments"`
}

type CreateRequest struct {
	Title     string           `json:"title"`
	Area      string           `json:"area"`
	AuditDate string           `json:"auditDate"`
	Visible   *bool            `json:"visible"`
	Notes     string           `json:"notes"`
	Findings  []FindingRequest `json:"findings"`
}

type FindingRequest struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

var validSeverities = map[string]struct{}{
	"Minor":    {},
	"Major":    {},
	"Critical": {},
}
