package normalize

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/quadtech/invoice-extractor/constants"
	"github.com/quadtech/invoice-extractor/internal/entity"
)

// Defaults used when Config fields are zero. The base component ID and path
// prefix match the values the downstream inventory system expects.
const (
	DefaultBaseComponentID    = 3167729
	DefaultDocumentPathPrefix = "img/invoices/bodyinvoices/-/"
	DefaultDocumentType       = string(constants.DocInvoice)
)

// Config carries the knobs for record normalization. Zero values fall back to
// the package defaults; tests override Now for a fixed processing date.
type Config struct {
	BaseComponentID    int64
	DocumentPathPrefix string
	Now                func() time.Time
}

// Normalizer coerces raw LLM output into a well-formed InvoiceRecord.
type Normalizer struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Normalizer {
	if cfg.BaseComponentID == 0 {
		cfg.BaseComponentID = DefaultBaseComponentID
	}
	if cfg.DocumentPathPrefix == "" {
		cfg.DocumentPathPrefix = DefaultDocumentPathPrefix
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{cfg: cfg, logger: logger}
}

// Diagnostic reports a JSON decode failure that Normalize recovered from.
// A nil Diagnostic means the candidate text parsed cleanly.
type Diagnostic struct {
	Err     error
	RawText string
}

// StripFences removes a surrounding markdown code fence, accepting a fenced
// block introduced by a language tag and falling back to a bare fence.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	}
	if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}

// Normalize converts a candidate JSON string (possibly fenced, truncated, or
// outright garbage) into a record satisfying every schema invariant. It never
// fails: a decode error degrades to the all-defaults record and is reported
// through the returned Diagnostic.
func (n *Normalizer) Normalize(raw, filename string) (entity.InvoiceRecord, *Diagnostic) {
	cleaned := StripFences(raw)

	var diag *Diagnostic
	m := map[string]any{}
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		n.logger.Warn("normalize.decode_failed",
			"file", filename,
			"error", err,
			"raw_text", truncate(cleaned, 500),
		)
		m = map[string]any{}
		diag = &Diagnostic{Err: err, RawText: cleaned}
	}

	rec := entity.InvoiceRecord{
		InventoryArrivalDate: scalar(m, "inventory_arrival_date"),
		StockNumber:          scalar(m, "stock_number"),
		VIN:                  scalar(m, "vin"),
		Condition:            scalar(m, "condition"),
		ModelYear:            scalar(m, "model_year"),
		Make:                 scalar(m, "make"),
		Model:                scalar(m, "model"),
		BodyType:             scalar(m, "body_type"),
		BodyLine:             scalar(m, "body_line"),
		BodyManufacturer:     scalar(m, "body_manufacturer"),
		BodyModel:            scalar(m, "body_model"),
		Distributor:          scalar(m, "distributor"),
		DistributorLocation:  scalar(m, "distributor_location"),
		InvoiceDate:          scalar(m, "invoice_date"),
	}

	rec.Components = n.normalizeComponents(m["components"])
	rec.Documents = n.normalizeDocuments(m["documents"], filename)
	return rec, diag
}

func (n *Normalizer) normalizeComponents(v any) []entity.Component {
	list, ok := v.([]any)
	if !ok {
		return []entity.Component{}
	}
	out := make([]entity.Component, 0, len(list))
	for i, item := range list {
		cm, _ := item.(map[string]any)

		comp := entity.Component{
			ID:   n.cfg.BaseComponentID + int64(i),
			Name: "Component_" + itoa(i+1),
		}
		if id, ok := intValue(cm, "id"); ok {
			comp.ID = id
		}
		if _, present := cm["name"]; present {
			comp.Name = scalar(cm, "name")
		}

		attrs, _ := cm["attributes"].([]any)
		comp.Attributes = make([]entity.Attribute, 0, len(attrs))
		for j, a := range attrs {
			am, _ := a.(map[string]any)
			attr := entity.Attribute{
				ID:   int64(j),
				Name: "Attribute_" + itoa(j+1),
			}
			if id, ok := intValue(am, "id"); ok {
				attr.ID = id
			}
			if _, present := am["name"]; present {
				attr.Name = scalar(am, "name")
			}
			attr.Value = scalar(am, "value")
			comp.Attributes = append(comp.Attributes, attr)
		}
		out = append(out, comp)
	}
	return out
}

func (n *Normalizer) normalizeDocuments(v any, filename string) []entity.DocumentRef {
	processingDate := n.cfg.Now().Format("2006-01-02")
	documentPath := n.cfg.DocumentPathPrefix + filename

	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return []entity.DocumentRef{{
			Date: processingDate,
			Type: DefaultDocumentType,
			Path: documentPath,
		}}
	}

	out := make([]entity.DocumentRef, 0, len(list))
	for i, item := range list {
		dm, _ := item.(map[string]any)
		ref := entity.DocumentRef{
			Date: scalar(dm, "date"),
			Type: scalar(dm, "type"),
			Path: scalar(dm, "path"),
		}
		if i == 0 {
			// The first entry's date and path are always system-computed;
			// type survives only when the extractor supplied a truthy one.
			ref.Date = processingDate
			ref.Path = documentPath
			if isFalsy(dm["type"]) {
				ref.Type = DefaultDocumentType
			}
		}
		out = append(out, ref)
	}
	return out
}

// scalar renders a mapping value as a string. Absent keys and explicit nulls
// become the empty string; strings pass through unchanged; numbers and bools
// keep their JSON literal form. Nested arrays/objects in a scalar slot
// contribute nothing.
func scalar(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func intValue(m map[string]any, key string) (int64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	default:
		return false
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
