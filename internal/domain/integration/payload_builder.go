package integration

// ValidationResult is the outcome of payload, template and shape validation
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// NewValidationResult builds a result from a list of error messages
func NewValidationResult(errs []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// PayloadBuilder assembles a CanonicalPayload step by step
type PayloadBuilder struct {
	payload CanonicalPayload
}

// NewPayloadBuilder creates an empty builder
func NewPayloadBuilder() *PayloadBuilder {
	return &PayloadBuilder{
		payload: CanonicalPayload{
			Workers:  []Worker{},
			Machines: []Machine{},
			Docs:     []Doc{},
		},
	}
}

// SetCompany sets the contractor company
func (b *PayloadBuilder) SetCompany(company Company) *PayloadBuilder {
	b.payload.Company = company
	return b
}

// SetSite sets the construction site
func (b *PayloadBuilder) SetSite(site Site) *PayloadBuilder {
	b.payload.Site = site
	return b
}

// SetWorkers replaces the worker list
func (b *PayloadBuilder) SetWorkers(workers []Worker) *PayloadBuilder {
	b.payload.Workers = append([]Worker{}, workers...)
	return b
}

// SetMachines replaces the machine list
func (b *PayloadBuilder) SetMachines(machines []Machine) *PayloadBuilder {
	b.payload.Machines = append([]Machine{}, machines...)
	return b
}

// SetDocuments replaces the document list
func (b *PayloadBuilder) SetDocuments(docs []Doc) *PayloadBuilder {
	b.payload.Docs = append([]Doc{}, docs...)
	return b
}

// Build returns a deep copy of the assembled payload
func (b *PayloadBuilder) Build() CanonicalPayload {
	return b.payload.Clone()
}

// Validate checks the business rules that gate dispatch
func (b *PayloadBuilder) Validate() ValidationResult {
	return b.payload.Validate()
}
