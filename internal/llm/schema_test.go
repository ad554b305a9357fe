package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInvoiceSchema(t *testing.T) {
	schema := BuildInvoiceJSONSchema()

	valid := []byte(`{
		"vin": "1FDUF5GT3KDA00001",
		"invoice_date": "2025-05-30",
		"components": [
			{"id": 3167729, "name": "Body", "attributes": [{"id": 0, "name": "Material", "value": "Composite"}]}
		],
		"documents": [{"date": "2025-06-10", "type": "Invoice", "path": "img/invoices/bodyinvoices/-/a.pdf"}]
	}`)
	assert.NoError(t, ValidateJSONAgainstSchema(schema, valid))
}

func TestValidateInvoiceSchemaRejects(t *testing.T) {
	schema := BuildInvoiceJSONSchema()

	cases := map[string][]byte{
		"missing required arrays": []byte(`{"vin": "1FDX"}`),
		"components not an array": []byte(`{"components": {}, "documents": []}`),
		"bad invoice date":        []byte(`{"invoice_date": "05/30/2025", "components": [], "documents": []}`),
		"non-integer id":          []byte(`{"components": [{"id": "abc"}], "documents": []}`),
	}
	for name, data := range cases {
		assert.Error(t, ValidateJSONAgainstSchema(schema, data), name)
	}
}

func TestValidateInvoiceSchemaBadJSON(t *testing.T) {
	err := ValidateJSONAgainstSchema(BuildInvoiceJSONSchema(), []byte("not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal data")
}
