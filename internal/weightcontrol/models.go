// Package weightcontrol covers net-content weight checks on the filling
// lines. A record stores the sampled weights plus the four sealing checks;
// its verdict is derived at creation time and never edited afterwards.
package weightcontrol

import "time"

type Verdict string

const (
	VerdictApproved Verdict = "Approved"
	VerdictRejected Verdict = "Rejected"
)

type Record struct {
	ID          int64     `db:"id" json:"id"`
	Product     string    `db:"product" json:"product"`
	Lot         string    `db:"lot" json:"lot"`
	Line        string    `db:"line" json:"line"`
	TargetGrams float64   `db:"target_grams" json:"targetGrams"`
	LowerGrams  float64   `db:"lower_grams" json:"lowerGrams"`
	UpperGrams  float64   `db:"upper_grams" json:"upperGrams"`
	SealTop     bool      `db:"seal_top" json:"sealTop"`
	SealBottom  bool      `db:"seal_bottom" json:"sealBottom"`
	SealLeft    bool      `db:"seal_left" json:"sealLeft"`
	SealRight   bool      `db:"seal_right" json:"sealRight"`
	Verdict     Verdict   `db:"verdict" json:"verdict"`
	CreatedBy   int64     `db:"created_by" json:"createdBy"`
	CreatorName string    `db:"creator_name" json:"creatorName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type Sample struct {
	ID       int64   `db:"id" json:"id"`
	RecordID int64   `db:"record_id" json:"recordId"`
	Position int     `db:"position" json:"position"`
	Grams    float64 `db:"grams" json:"grams"`
}

// Detail bundles a record with its samples for the detail endpoint.
type Detail struct {
	Header  Record   `json:"header"`
	Samples []Sample `json:"samples"`
}

// CreateRequest carries weights as strings because the capture screens post
// raw scale readings; empty readings count as zero.
type CreateRequest struct {
	Product     string   `json:"product"`
	Lot         string   `json:"lot"`
	Line        string   `json:"line"`
	TargetGrams float64  `json:"targetGrams"`
	LowerGrams  float64  `json:"lowerGrams"`
	UpperGrams  float64  `json:"upperGrams"`
	SealTop     bool     `json:"sealTop"`
	SealBottom  bool     `json:"sealBottom"`
	SealLeft    bool     `json:"sealLeft"`
	SealRight   bool     `json:"sealRight"`
	Weights     []string `json:"weights"`
}
