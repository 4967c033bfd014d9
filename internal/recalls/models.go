// Package recalls documents waste-recall events: which lot is pulled back,
// which shipments carried it, and the paper trail. Records share the
// corrective-action status graph, Open → InProgress → Closed.
package recalls

import "time"

type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "InProgress"
	StatusClosed     Status = "Closed"
)

var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress},
	StatusInProgress: {StatusClosed},
	StatusClosed:     {},
}

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

type Recall struct {
	ID          int64      `db:"id" json:"id"`
	Product     string     `db:"product" json:"product"`
	Lot         string     `db:"lot" json:"lot"`
	Reason      string     `db:"reason" json:"reason"`
	Status      Status     `db:"status" json:"status"`
	CreatedBy   int64      `db:"created_by" json:"createdBy"`
	CreatorName string     `db:"creator_name" json:"creatorName"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	ClosedAt    *time.Time `db:"closed_at" json:"closedAt,omitempty"`
}

type Shipment struct {
	ID          int64   `db:"id" json:"id"`
	RecallID    int64   `db:"recall_id" json:"recallId"`
	ShipmentRef string  `db:"shipment_ref" json:"shipmentRef"`
	Quantity    float64 `db:"quantity" json:"quantity"`
	Recovered   float64 `db:"recovered" json:"recovered"`

	// Filled from the ERP on reads; not stored locally.
	Customer    string `db:"-" json:"customer,omitempty"`
	Destination string `db:"-" json:"destination,omitempty"`
}

type Attachment struct {
	ID       int64  `db:"id" json:"id"`
	RecallID int64  `db:"recall_id" json:"recallId"`
	FileName string `db:"file_name" json:"fileName"`
	RelPath  string `db:"rel_path" json:"relPath"`
}

// ShipmentInfo is what the ERP knows about an outbound shipment.
type ShipmentInfo struct {
	Ref         string `db:"ref"`
	Customer    string `db:"customer"`
	Destination string `db:"destination"`
}

// Detail bundles a recall with its shipments and attachments.
type Detail struct {
	Header      Recall       `json:"header"`
	Shipments   []Shipment   `json:"shipments"`
	Attachments []Attachment `json:"attachments"`
}

type CreateRequest struct {
	Product   string            `json:"product"`
	Lot       string            `json:"lot"`
	Reason    string            `json:"reason"`
	Shipments []ShipmentRequest `json:"shipments"`
}

type ShipmentRequest struct {
	ShipmentRef string  `json:"shipmentRef"`
	Quantity    float64 `json:"quantity"`
	Recovered   float64 `json:"recovered"`
}

type TransitionRequest struct {
	Status string `json:"status"`
}
