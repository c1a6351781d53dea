package runner

import (
	"errors"
	"sort"
	"unicode/utf8"

	"github.com/chipp-ai/dispatch/engine/core"
)

// previewLimit caps the response body excerpt carried on results.
const previewLimit = 4096

// Result is the uniform execution outcome contract. It never carries raw
// secret material: error messages are scrubbed and test-mode previews are
// built from the redacted request view.
type Result struct {
	ActionID   core.ID         `json:"action_id"`
	ExecID     core.ID         `json:"exec_id"`
	Status     core.StatusType `json:"status"`
	HTTPStatus int             `json:"http_status,omitempty"`
	Preview    string          `json:"preview,omitempty"`
	Truncated  bool            `json:"truncated,omitempty"`
	Outputs    core.Output     `json:"outputs,omitempty"`
	Error      *core.Error     `json:"error,omitempty"`
	DurationMs int64           `json:"duration_ms"`
	Request    *RequestPreview `json:"request,omitempty"`
}

// RequestPreview is the masked view of the outbound request returned in
// test mode: method, URL, redacted headers and body field names, never
// secret values.
type RequestPreview struct {
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Headers    map[string]string `json:"headers,omitempty"`
	Query      map[string]string `json:"query,omitempty"`
	BodyFields []string          `json:"body_fields,omitempty"`
}

// Succeeded reports whether the execution completed with a 2xx upstream
// response.
func (r *Result) Succeeded() bool {
	return r.Status == core.StatusSuccess
}

// newSuccessResult formats a completed call into the uniform contract.
func newSuccessResult(actionID, execID core.ID, outcome *Outcome, outputs core.Output) *Result {
	return &Result{
		ActionID:   actionID,
		ExecID:     execID,
		Status:     core.StatusSuccess,
		HTTPStatus: outcome.StatusCode,
		Preview:    bodyPreview(outcome.Body),
		Truncated:  outcome.Truncated,
		Outputs:    outputs,
		DurationMs: outcome.Duration.Milliseconds(),
	}
}

// newErrorResult normalizes a failure from any pipeline stage. When the
// upstream responded (outcome non-nil) its status code and capped body are
// preserved on the result.
func newErrorResult(actionID, execID core.ID, outcome *Outcome, err error) *Result {
	coded := asCodedError(err)
	result := &Result{
		ActionID:   actionID,
		ExecID:     execID,
		Status:     core.StatusForCode(coded.Code),
		Error:      coded,
		DurationMs: 0,
	}
	if outcome != nil {
		result.HTTPStatus = outcome.StatusCode
		result.Preview = bodyPreview(outcome.Body)
		result.Truncated = outcome.Truncated
		result.DurationMs = outcome.Duration.Milliseconds()
	}
	return result
}

// asCodedError coerces any error into the coded form, scrubbing secrets
// from foreign messages.
func asCodedError(err error) *core.Error {
	var coded *core.Error
	if errors.As(err, &coded) {
		return coded
	}
	return core.NewError(err, core.ErrCodeInternal, core.RedactError(err), nil)
}

func bodyPreview(body []byte) string {
	if len(body) > previewLimit {
		body = trimToRuneBoundary(body[:previewLimit])
	}
	return string(body)
}

// trimToRuneBoundary drops a trailing multi-byte rune a byte-index cut left
// incomplete, so previews stay valid UTF-8.
func trimToRuneBoundary(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size != 1 {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

// buildRequestPreview produces the fully-masked request view for the test
// pathway. Header values are redacted, sensitive query values are replaced
// by the fixed mask, and only body field names are listed.
func buildRequestPreview(req *HTTPRequest) *RequestPreview {
	if req == nil {
		return nil
	}
	preview := &RequestPreview{
		Method:  req.Method.String(),
		URL:     req.URL,
		Headers: core.RedactHeaders(req.Headers),
	}
	if len(req.Query) > 0 {
		preview.Query = make(map[string]string, len(req.Query))
		for k, v := range req.Query {
			if core.IsSensitiveHeader(k) {
				preview.Query[k] = core.SecretMask
				continue
			}
			preview.Query[k] = core.RedactString(v)
		}
	}
	if len(req.Body) > 0 {
		preview.BodyFields = make([]string, 0, len(req.Body))
		for name := range req.Body {
			preview.BodyFields = append(preview.BodyFields, name)
		}
		sort.Strings(preview.BodyFields)
	}
	return preview
}
