package inout

import "fmt"

// IOError carries a machine-readable code alongside the message so the
// protocol layer can translate failures without string matching.
type IOError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *IOError) Error() string {
	return e.Message
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// InvalidInputError reports a value rejected by coercion or validation.
// Recoverable: only the offending binding fails, not the whole request.
func InvalidInputError(format string, args ...any) *IOError {
	return &IOError{
		Code:    "INVALID_INPUT",
		Message: fmt.Sprintf(format, args...),
	}
}

// NotImplementedError reports a representation this core does not
// provide yet.
func NotImplementedError(what string) *IOError {
	return &IOError{
		Code:    "NOT_IMPLEMENTED",
		Message: fmt.Sprintf("%s is not implemented", what),
	}
}

func wrapIO(code, msg string, err error) *IOError {
	return &IOError{Code: code, Message: msg, Err: err}
}
