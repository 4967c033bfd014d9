// Package suppliers covers supplier quality evaluations. Evaluations live on
// the primary database; the supplier master itself lives in the ERP and is
// only read from here.
package suppliers

import "time"

// Supplier is a row from the ERP supplier master.
type Supplier struct {
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`
	Active   bool   `db:"active" json:"active"`
}

type Evaluation struct {
	ID            int64     `db:"id" json:"id"`
	SupplierCode  string    `db:"supplier_code" json:"supplierCode"`
	SupplierName  string    `db:"supplier_name" json:"supplierName"`
	Period        string    `db:"period" json:"period"`
	QualityScore  float64   `db:"quality_score" json:"qualityScore"`
	DeliveryScore float64   `db:"delivery_score" json:"deliveryScore"`
	ServiceScore  float64   `db:"service_score" json:"serviceScore"`
	OverallScore  float64   `db:"overall_score" json:"overallScore"`
	Comments      string    `db:"comments" json:"comments"`
	CreatedBy     int64     `db:"created_by" json:"createdBy"`
	CreatorName   string    `db:"creator_name" json:"creatorName"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

type CreateRequest struct {
	SupplierCode  string  `json:"supplierCode"`
	Period        string  `json:"period"`
	QualityScore  float64 `json:"qualityScore"`
	DeliveryScore float64 `json:"deliveryScore"`
	ServiceScore  float64 `json:"serviceScore"`
	Comments      string  `json:"comments"`
}
