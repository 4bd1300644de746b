package output

import (
	"encoding/json"
	"io"
)

// ErrorCode represents a machine-readable error classification.
type ErrorCode string

// Error code constants, matching the pipeline's failure taxonomy.
const (
	ErrGeneral        ErrorCode = "GENERAL_ERROR"
	ErrAuthorization  ErrorCode = "AUTHORIZATION_ERROR"
	ErrStorage        ErrorCode = "STORAGE_ERROR"
	ErrInvalidFormat  ErrorCode = "INVALID_FORMAT"
	ErrPartialRestore ErrorCode = "PARTIAL_RESTORE_FAILURE"
	ErrValidation     ErrorCode = "VALIDATION_ERROR"
)

// Exit codes. Every failure exits 1 so external schedulers can treat any
// nonzero status uniformly; the JSON envelope carries the finer-grained code.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// successEnvelope is the JSON structure for successful responses.
type successEnvelope struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// errorEnvelope is the JSON structure for error responses.
type errorEnvelope struct {
	OK    bool      `json:"ok"`
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

// writeJSONSuccess writes a success envelope to w.
func writeJSONSuccess(w io.Writer, data any, message string) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(successEnvelope{
		OK:      true,
		Data:    data,
		Message: message,
	})
}

// writeJSONError writes an error envelope to w.
func writeJSONError(w io.Writer, err error, code ErrorCode) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(errorEnvelope{
		OK:    false,
		Error: err.Error(),
		Code:  code,
	})
}
