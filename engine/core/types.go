package core

// -----------------------------------------------------------------------------
// Execution Status
// -----------------------------------------------------------------------------

type StatusType string

const (
	StatusSuccess         StatusType = "success"
	StatusValidationError StatusType = "validation_error"
	StatusAuthError       StatusType = "auth_error"
	StatusNetworkError    StatusType = "network_error"
	StatusTimeout         StatusType = "timeout"
	StatusUpstreamError   StatusType = "upstream_error"
)

func (s StatusType) String() string {
	return string(s)
}

// IsFailure reports whether the status represents a failed execution.
func (s StatusType) IsFailure() bool {
	return s != StatusSuccess
}

// -----------------------------------------------------------------------------
// Execution Mode
// -----------------------------------------------------------------------------

type ExecutionMode string

const (
	ModeLive ExecutionMode = "live"
	ModeTest ExecutionMode = "test"
)

func (m ExecutionMode) String() string {
	return string(m)
}

// -----------------------------------------------------------------------------
// HTTP Method
// -----------------------------------------------------------------------------

type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

func (m Method) String() string {
	return string(m)
}

// IsValid reports whether the method is one of the supported verbs.
func (m Method) IsValid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	default:
		return false
	}
}

// HasBody reports whether parameters not consumed by the URL template are
// sent as a JSON body rather than query parameters.
func (m Method) HasBody() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch:
		return true
	default:
		return false
	}
}
