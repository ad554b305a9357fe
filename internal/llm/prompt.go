package llm

import (
	"strings"
	"time"
)

// BuildSystemPrompt composes the system message: parsing instructions, the
// required JSON shape, and the body-model knowledge base with its matching
// rules.
func BuildSystemPrompt(bodyModels []string) string {
	var b strings.Builder
	b.WriteString(`You are an expert vehicle invoice parser that extracts structured data from automobile invoices including truck bodies, equipment, and vehicle modifications.

**CRITICAL: Return ONLY valid JSON - no markdown, no explanations, no additional text.**

**PARSING INSTRUCTIONS:**

**1. HEADER INFORMATION:**
- distributor: Extract the body/equipment manufacturer name from invoice header (the company that built/supplied the body/equipment, NOT the dealer/sold-to)
- distributor_location: Extract manufacturer's location from header (City, State ZIP format)
- make: Proper case formatting (e.g., "Ford", "International", "Freightliner", "Chevrolet", "Ram")
- model: Include dashes and proper formatting (e.g., "F-600", "MV", "Cascadia", "Silverado", "ProMaster")
- body_type: Classify as "Box Truck", "Flatbed", "Tank Truck", "Service Body", "Pickup Truck", "Van", "Other/Specialty", etc.
- body_line: More specific description if available (e.g., "Water Truck", "Dry Van", "Stake Bed", "Refrigerated", "Utility Body") - leave empty if not clearly specified
- body_manufacturer: The company that manufactured the body/equipment
- body_model: Full descriptive specification from invoice

**2. INVENTORY ARRIVAL DATE:**
- inventory_arrival_date: ONLY extract if date is hand-written on the document or explicitly labeled as "arrival date", "delivery date", or similar
- Leave empty ("") if no hand-written or explicit arrival date is found
- Do not use invoice date, quote date, or other standard dates

**3. DYNAMIC COMPONENT EXTRACTION:**
- Analyze invoice content to identify ALL installed components/equipment
- Create components based on what's actually present in the invoice
- Common component types: Body/Tank, Engine, Transmission, Pump/PTO, Hose Reel, Ladder, Safety Equipment, Electrical, Hydraulics, Plumbing, Storage, Accessories, Interior, Exterior

**4. ATTRIBUTE EXTRACTION RULES:**
- Material: Steel, Aluminum, Composite, Stainless Steel, Plastic, etc.
- Dimensions: Use inches with quote marks (64.75", 96", 192")
- Capacity: Include units (2,000 Gallon, 2500lb, etc.)
- Description: Comprehensive but concise feature descriptions

**5. FLEXIBLE STRUCTURE:**
- Extract only components that actually exist in the invoice
- Don't force predetermined component lists
- Adapt to different vehicle types (trucks, vans, cars, specialty vehicles)

**6. DATE AND DOCUMENT HANDLING:**
- All dates in YYYY-MM-DD format
- invoice_date: Actual invoice/quote date
- Document type: "Invoice", "Sales Quote", "Work Order", "Bill of Sale", etc.
`)

	if len(bodyModels) > 0 {
		b.WriteString(`
**BODY MODEL EXTRACTION RULES:**

1. **Exact Match Priority**:
   - First look for EXACT matches (case-insensitive) between invoice text and known models
   - Pay special attention to alphanumeric codes (like "PVMXT-263C", "782F") - these should match exactly or not at all

2. **Partial Match Rules**:
   For non-alphanumeric models (descriptive names):
   - Match if most words appear in the same order ("Pro Series" matches "9' Pro Series - Platform")
   - Ignore measurements and dimensions when matching ("8'6" SK Deluxe" matches "SK Deluxe")
   - Ignore punctuation and special characters

3. **No Match Handling**:
   - If no match found, return the FULL descriptive text from the invoice
   - Never return a partial match for alphanumeric codes

**KNOWN BODY MODELS:**
`)
		for _, m := range bodyModels {
			b.WriteString("- ")
			b.WriteString(m)
			b.WriteString("\n")
		}
	}

	b.WriteString(`
**CRITICAL: Return ONLY valid JSON - no markdown, no explanations, no additional text.**

Return the JSON structure with all identified components and their specific attributes:
{
  "inventory_arrival_date": "",
  "stock_number": "",
  "vin": "",
  "condition": "",
  "model_year": "",
  "make": "",
  "model": "",
  "body_type": "",
  "body_line": "",
  "body_manufacturer": "",
  "body_model": "",
  "distributor": "",
  "distributor_location": "",
  "invoice_date": "",
  "components": [
    {
      "id": 1,
      "name": "Component Name",
      "attributes": [
        { "id": 0, "name": "Attribute Name", "value": "Attribute Value" }
      ]
    }
  ],
  "documents": [
    {
      "date": "2025-06-10",
      "type": "Invoice",
      "path": "img/invoices/bodyinvoices/-/filename.pdf"
    }
  ]
}`)

	return b.String()
}

// BuildUserPrompt packages the document text with filename and processing
// date context, followed by the extraction guidelines.
func BuildUserPrompt(req ExtractRequest) string {
	currentDate := req.CurrentDate
	if currentDate == "" {
		currentDate = time.Now().Format("2006-01-02")
	}

	var b strings.Builder
	b.WriteString("Extract the information from the following document text and return it in the required JSON format:\n\n")
	b.WriteString("Document filename: ")
	b.WriteString(req.Filename)
	b.WriteString("\nCurrent date: ")
	b.WriteString(currentDate)
	b.WriteString("\n\n")
	b.WriteString(req.DocumentText)
	b.WriteString("\n")
	b.WriteString(Guidelines)
	return b.String()
}
