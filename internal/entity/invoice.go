package entity

// InvoiceRecord is the canonical representation of one parsed vehicle invoice.
// Field order matches the serialized JSON shape consumed downstream; every
// scalar field is always present (possibly empty), never omitted.
type InvoiceRecord struct {
	InventoryArrivalDate string        `json:"inventory_arrival_date"`
	StockNumber          string        `json:"stock_number"`
	VIN                  string        `json:"vin"`
	Condition            string        `json:"condition"`
	ModelYear            string        `json:"model_year"`
	Make                 string        `json:"make"`
	Model                string        `json:"model"`
	BodyType             string        `json:"body_type"`
	BodyLine             string        `json:"body_line"`
	BodyManufacturer     string        `json:"body_manufacturer"`
	BodyModel            string        `json:"body_model"`
	Distributor          string        `json:"distributor"`
	DistributorLocation  string        `json:"distributor_location"`
	InvoiceDate          string        `json:"invoice_date"`
	Components           []Component   `json:"components"`
	Documents            []DocumentRef `json:"documents"`
}

// Component is a named sub-part of the vehicle or its body (e.g., "Body",
// "Liftgate") carrying an ordered list of attributes.
type Component struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

// Attribute is a name/value specification pair attached to a component.
type Attribute struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DocumentRef describes the source file backing a record. The first entry's
// date and path are always system-computed at normalization time.
type DocumentRef struct {
	Date string `json:"date"`
	Type string `json:"type"`
	Path string `json:"path"`
}
