package recalls

import (
	"context"
	"time"
)

// Store persists recalls on the primary pool. Creation writes the header,
// shipments, and attachments inside RunInTx.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	InsertHeader(ctx context.Context, rec *Recall) error
	InsertShipment(ctx context.Context, sh *Shipment) error
	InsertAttachment(ctx context.Context, att *Attachment) error

	List(ctx context.Context) ([]Recall, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status, closedAt *time.Time) error
}

// ShipmentDirectory resolves shipment references against the ERP.
type ShipmentDirectory interface {
	FindShipments(ctx context.Context, refs []string) (map[string]ShipmentInfo, error)
}
