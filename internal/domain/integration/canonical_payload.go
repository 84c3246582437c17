package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Date is a civil date without time of day
// ---------------------------------------------------------------------------

// Date represents a calendar date rendered as YYYY-MM-DD
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a Date from its parts
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the UTC calendar date of t
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses YYYY-MM-DD or an RFC3339 timestamp
func ParseDate(s string) (Date, error) {
	t, ok := parseDateValue(s)
	if !ok {
		return Date{}, fmt.Errorf("integration: invalid date %q", s)
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight UTC of the date
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String returns the ISO representation
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format("2006-01-02")
}

// MarshalJSON renders the date as "YYYY-MM-DD", or null when zero
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD", RFC3339, "" and null
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DatePtr is a helper for optional date fields
func DatePtr(d Date) *Date {
	return &d
}

// ---------------------------------------------------------------------------
// Enumerations
// ---------------------------------------------------------------------------

// RiskProfile is the safety risk classification of a site
type RiskProfile string

const (
	RiskProfileLow    RiskProfile = "low"
	RiskProfileMedium RiskProfile = "medium"
	RiskProfileHigh   RiskProfile = "high"
)

// IsValid returns true if the risk profile is known
func (r RiskProfile) IsValid() bool {
	switch r {
	case RiskProfileLow, RiskProfileMedium, RiskProfileHigh:
		return true
	default:
		return false
	}
}

// DocEntityType is the kind of entity a document belongs to
type DocEntityType string

const (
	DocEntityCompany DocEntityType = "company"
	DocEntityWorker  DocEntityType = "worker"
	DocEntityMachine DocEntityType = "machine"
	DocEntitySite    DocEntityType = "site"
)

// IsValid returns true if the entity type is known
func (t DocEntityType) IsValid() bool {
	switch t {
	case DocEntityCompany, DocEntityWorker, DocEntityMachine, DocEntitySite:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Canonical payload
// ---------------------------------------------------------------------------

// Company is the contractor company being accredited
type Company struct {
	TaxID        string `json:"taxId"`
	Name         string `json:"name"`
	REANumber    string `json:"reaNumber"`
	ContactEmail string `json:"contactEmail"`
}

// Site is the construction site the data is dispatched for
type Site struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Client      string      `json:"client"`
	RiskProfile RiskProfile `json:"riskProfile"`
}

// Worker is a person assigned to the site
type Worker struct {
	IDNumber       string `json:"idNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	TrainingLevel  string `json:"trainingLevel"`
	TrainingExpiry *Date  `json:"trainingExpiry" swaggertype:"string" format:"date"`
}

// Machine is a piece of equipment assigned to the site
type Machine struct {
	Serial            string `json:"serial"`
	Type              string `json:"type"`
	MaintenanceExpiry *Date  `json:"maintenanceExpiry" swaggertype:"string" format:"date"`
}

// Doc is a compliance document reference
type Doc struct {
	EntityType DocEntityType  `json:"entityType"`
	EntityID   string         `json:"entityId,omitempty"`
	Category   string         `json:"category"`
	FileURL    string         `json:"fileUrl"`
	Expiry     *Date          `json:"expiry" swaggertype:"string" format:"date"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// CanonicalPayload is the platform-agnostic representation of one site's
// compliance data. It is treated as immutable once built for a dispatch.
type CanonicalPayload struct {
	Company  Company   `json:"company"`
	Site     Site      `json:"site"`
	Workers  []Worker  `json:"workers"`
	Machines []Machine `json:"machines"`
	Docs     []Doc     `json:"docs"`
}

// Clone returns a deep copy of the payload with non-nil sequences
func (p CanonicalPayload) Clone() CanonicalPayload {
	out := CanonicalPayload{
		Company:  p.Company,
		Site:     p.Site,
		Workers:  make([]Worker, len(p.Workers)),
		Machines: make([]Machine, len(p.Machines)),
		Docs:     make([]Doc, len(p.Docs)),
	}
	for i, w := range p.Workers {
		w.TrainingExpiry = cloneDate(w.TrainingExpiry)
		out.Workers[i] = w
	}
	for i, m := range p.Machines {
		m.MaintenanceExpiry = cloneDate(m.MaintenanceExpiry)
		out.Machines[i] = m
	}
	for i, d := range p.Docs {
		d.Expiry = cloneDate(d.Expiry)
		if d.Meta != nil {
			d.Meta = cloneValue(d.Meta).(map[string]any)
		}
		out.Docs[i] = d
	}
	return out
}

// ToMap converts the payload into the generic JSON tree consumed by the mapping engine
func (p CanonicalPayload) ToMap() (map[string]any, error) {
	data, err := json.Marshal(p.Clone())
	if err != nil {
		return nil, fmt.Errorf("integration: encode canonical payload: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("integration: decode canonical payload: %w", err)
	}
	return out, nil
}

// Validate runs the business-rule checks required before dispatch
func (p CanonicalPayload) Validate() ValidationResult {
	fieldErrors := p.FieldErrors()
	errs := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		errs[i] = fe.Error()
	}
	return NewValidationResult(errs)
}

// FieldErrors returns the indexed business-rule violations of the payload
func (p CanonicalPayload) FieldErrors() []FieldError {
	var errs []FieldError
	add := func(entity string, index int, field, message string) {
		errs = append(errs, FieldError{Entity: entity, Index: index, Field: field, Message: message})
	}

	if blank(p.Company.TaxID) {
		add("company", 0, "taxId", "Company tax ID (CIF) is required")
	}
	if blank(p.Company.Name) {
		add("company", 0, "name", "Company name is required")
	}
	if blank(p.Site.Code) {
		add("site", 0, "code", "Site code is required")
	}
	if blank(p.Site.Name) {
		add("site", 0, "name", "Site name is required")
	}
	for i, w := range p.Workers {
		if blank(w.IDNumber) {
			add("worker", i+1, "idNumber", "DNI is required")
		}
		if blank(w.FirstName) {
			add("worker", i+1, "firstName", "first name is required")
		}
	}
	for i, m := range p.Machines {
		if blank(m.Serial) {
			add("machine", i+1, "serial", "serial number is required")
		}
		if blank(m.Type) {
			add("machine", i+1, "type", "type is required")
		}
	}
	for i, d := range p.Docs {
		if blank(string(d.EntityType)) {
			add("document", i+1, "entityType", "entity type is required")
		}
		if blank(d.Category) {
			add("document", i+1, "category", "category is required")
		}
		if blank(d.FileURL) {
			add("document", i+1, "fileUrl", "file URL is required")
		}
	}
	return errs
}

// FieldError is a single indexed validation failure. Index is 1-based for
// sequence entities and 0 for company and site.
type FieldError struct {
	Entity  string `json:"entity"`
	Index   int    `json:"index,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error renders the failure as a plain string, e.g. "Worker 2: DNI is required"
func (e FieldError) Error() string {
	if e.Index == 0 {
		return e.Message
	}
	var label string
	switch e.Entity {
	case "worker":
		label = "Worker"
	case "machine":
		label = "Machine"
	case "document":
		label = "Document"
	default:
		label = e.Entity
	}
	return fmt.Sprintf("%s %d: %s", label, e.Index, e.Message)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
