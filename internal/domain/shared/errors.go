package shared

// DomainError carries a stable code that the HTTP layer maps to an API error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// ErrConcurrencyConflict is returned by a save whose expected version no longer
// matches the stored row. Callers reload and reapply, or surface a 409.
var ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
