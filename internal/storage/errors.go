package storage

import "fmt"

// StorageError carries a machine-readable code so the request layer can
// translate storage failures without string matching. All storage
// failures are fatal for the output being stored.
type StorageError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// OutOfStorageError reports insufficient free space, detected before
// any write is attempted.
func OutOfStorageError(target, file string) *StorageError {
	return &StorageError{
		Code:    "OUT_OF_STORAGE",
		Message: fmt.Sprintf("not enough space in %s to store %s", target, file),
	}
}

// StorageUnavailableError reports a backend connection or session that
// could not be established.
func StorageUnavailableError(msg string, err error) *StorageError {
	return &StorageError{Code: "STORAGE_UNAVAILABLE", Message: msg, Err: err}
}

// WriteFailedError reports a write the backend accepted but that did
// not take effect.
func WriteFailedError(msg string, err error) *StorageError {
	return &StorageError{Code: "WRITE_FAILED", Message: msg, Err: err}
}

// UnknownCategoryError reports an unrecognized data category. This is
// an internal invariant violation: upstream validation must make it
// unreachable.
func UnknownCategoryError(category fmt.Stringer) *StorageError {
	return &StorageError{
		Code:    "UNKNOWN_CATEGORY",
		Message: fmt.Sprintf("unknown data category %q", category),
	}
}
