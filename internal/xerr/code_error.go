// Package xerr defines the structured error taxonomy shared by every
// ingestion and query component, and the HTTP-facing error envelope.
package xerr

import "fmt"

// CodeError is a structured error carrying a taxonomy code alongside
// a human-readable message. Components never panic or raise across
// their boundary; they return a *CodeError instead.
type CodeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a CodeError with the given taxonomy code.
func New(code, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

// Newf creates a CodeError with a formatted message.
func Newf(code, format string, args ...any) *CodeError {
	return &CodeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error taxonomy codes, per the ingestion/query error model.
const (
	UnsupportedType    = "UNSUPPORTED_TYPE"
	ExtractFailed      = "EXTRACT_FAILED"
	EncodeFailed       = "ENCODE_FAILED"
	StorageWriteFailed = "STORAGE_WRITE_FAILED"
	MetadataWriteFailed = "METADATA_WRITE_FAILED"
	VectorWriteFailed  = "VECTOR_WRITE_FAILED"
	QueryFailed        = "QUERY_FAILED"
	InvalidPath        = "INVALID_PATH"
	BadRequest         = "BAD_REQUEST"
	ServerError        = "SERVER_ERROR"
)

// Predefined errors for the most common HTTP-layer failures.
var (
	ErrServerError = New(ServerError, "internal server error")
	ErrBadRequest  = New(BadRequest, "malformed request")
)

// HTTPStatus maps a taxonomy code to its default HTTP status.
func HTTPStatus(code string) int {
	switch code {
	case BadRequest, InvalidPath, UnsupportedType:
		return 400
	case ServerError, MetadataWriteFailed, StorageWriteFailed:
		return 500
	default:
		return 500
	}
}
