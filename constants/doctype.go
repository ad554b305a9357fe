package constants

// DocumentType classifies the source document backing an invoice record.
type DocumentType string

const (
	DocInvoice    DocumentType = "Invoice"
	DocSalesQuote DocumentType = "Sales Quote"
	DocWorkOrder  DocumentType = "Work Order"
	DocBillOfSale DocumentType = "Bill of Sale"
)

// KnownDocumentTypes lists the labels the extractor is expected to emit.
var KnownDocumentTypes = []DocumentType{
	DocInvoice,
	DocSalesQuote,
	DocWorkOrder,
	DocBillOfSale,
}
