package inout

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
)

// SourceKind identifies which representation a handle currently holds.
type SourceKind int

const (
	KindUnset SourceKind = iota
	KindFile
	KindStream
	KindData
	KindMemory
)

func (k SourceKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindStream:
		return "stream"
	case KindData:
		return "data"
	case KindMemory:
		return "memory"
	default:
		return "unset"
	}
}

// Mode is the validation strictness requested for a handle.
type Mode int

const (
	ModeNone Mode = iota
	ModeSimple
	ModeStrict
	ModeVeryStrict
)

// Validator inspects a freshly bound handle and reports whether the
// data is acceptable under the given mode.
type Validator func(h *Handle, mode Mode) bool

// AcceptAll is the fallback validator; it accepts everything.
func AcceptAll(_ *Handle, _ Mode) bool { return true }

// sniffLen bounds how much of a file is examined when deciding whether
// its content is text or binary.
const sniffLen = 512

// Handle holds one input or output value in exactly one of four
// representations (file path, open stream, raw data, in-memory object)
// and converts between them on demand. A handle is single-owner: the
// request context that created it binds, reads and finally releases it.
type Handle struct {
	kind     SourceKind
	filePath string
	stream   io.Reader
	data     any

	workdir   string
	requestID string
	mode      Mode
	validator Validator
	format    *Format

	tempFile    string
	ownedStream io.ReadCloser
	validated   bool
}

func NewHandle(workdir string, mode Mode) *Handle {
	h := &Handle{mode: mode}
	h.SetWorkdir(workdir)
	return h
}

func (h *Handle) Kind() SourceKind { return h.kind }
func (h *Handle) Workdir() string  { return h.workdir }
func (h *Handle) Mode() Mode       { return h.mode }
func (h *Handle) Validated() bool  { return h.validated }

// SetWorkdir sets the scratch directory for materialized files,
// creating it if missing.
func (h *Handle) SetWorkdir(workdir string) {
	if workdir != "" {
		if _, err := os.Stat(workdir); os.IsNotExist(err) {
			os.MkdirAll(workdir, 0755)
		}
	}
	h.workdir = workdir
}

// SetRequestID associates the handle with the owning request.
func (h *Handle) SetRequestID(id string) { h.requestID = id }
func (h *Handle) RequestID() string      { return h.requestID }

// SetValidator installs the predicate run after every bind.
func (h *Handle) SetValidator(v Validator) { h.validator = v }

// setFormat is used by complex handles so that materialization and the
// binary/text decision can consult the negotiated format.
func (h *Handle) setFormat(f *Format) { h.format = f }

// BindFile sets the source to a file path and validates.
func (h *Handle) BindFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return InvalidInputError("resolve path %q: %v", path, err)
	}
	h.rebind(KindFile, abs, nil, nil)
	return h.Validate()
}

// BindStream sets the source to a readable stream and validates. The
// stream is consumed at most once, by the first read-back.
func (h *Handle) BindStream(r io.Reader) error {
	h.rebind(KindStream, "", r, nil)
	return h.Validate()
}

// BindData sets the source to a raw in-process value (bytes, text or a
// coerced literal) and validates.
func (h *Handle) BindData(v any) error {
	h.rebind(KindData, "", nil, v)
	return h.Validate()
}

// BindBase64 decodes the given text and binds the result as raw bytes.
func (h *Handle) BindBase64(encoded string) error {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return InvalidInputError("decode base64 data: %v", err)
	}
	return h.BindData(raw)
}

// rebind replaces kind and source together and discards representation
// state derived from the previous source.
func (h *Handle) rebind(kind SourceKind, path string, stream io.Reader, data any) {
	h.closeOwnedStream()
	h.removeTempFile()
	h.kind = kind
	h.filePath = path
	h.stream = stream
	h.data = data
}

// Validate runs the bound validator. On rejection the just-bound source
// is kept; only the validated flag is cleared.
func (h *Handle) Validate() error {
	v := h.validator
	if v == nil {
		v = AcceptAll
	}
	if !v(h, h.mode) {
		h.validated = false
		return InvalidInputError("input data not valid using mode %d", h.mode)
	}
	h.validated = true
	return nil
}

// File returns the source as a file path, materializing a temporary
// file once for stream and data sources. Repeat calls reuse the file.
func (h *Handle) File() (string, error) {
	switch h.kind {
	case KindFile:
		return h.filePath, nil
	case KindStream, KindData:
		if h.tempFile != "" {
			return h.tempFile, nil
		}
		ext := ""
		if h.format != nil {
			ext = h.format.Extension
		}
		f, err := os.CreateTemp(h.workdir, "input-*"+ext)
		if err != nil {
			return "", fmt.Errorf("create temp file: %w", err)
		}
		if h.kind == KindStream {
			_, err = io.Copy(f, h.stream)
		} else {
			_, err = f.Write(h.dataBytes())
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(f.Name())
			return "", fmt.Errorf("write temp file: %w", err)
		}
		h.tempFile = f.Name()
		return h.tempFile, nil
	case KindMemory:
		return "", NotImplementedError("file view of memory object")
	default:
		return "", InvalidInputError("no data bound to handle")
	}
}

// Stream returns the source as a readable. For file sources a fresh
// read-only handle is opened on every call and any previously opened
// one is closed. Bound streams are returned unchanged.
func (h *Handle) Stream() (io.Reader, error) {
	switch h.kind {
	case KindFile:
		h.closeOwnedStream()
		f, err := os.Open(h.filePath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", h.filePath, err)
		}
		h.ownedStream = f
		return f, nil
	case KindStream:
		return h.stream, nil
	case KindData:
		return bytes.NewReader(h.dataBytes()), nil
	case KindMemory:
		return nil, NotImplementedError("stream view of memory object")
	default:
		return nil, InvalidInputError("no data bound to handle")
	}
}

// Data returns the source as an in-process value. File content comes
// back as a string when classified as text, as bytes otherwise. A
// stream source is fully consumed.
func (h *Handle) Data() (any, error) {
	switch h.kind {
	case KindFile:
		b, err := os.ReadFile(h.filePath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", h.filePath, err)
		}
		if h.isText(b) {
			return string(b), nil
		}
		return b, nil
	case KindStream:
		b, err := io.ReadAll(h.stream)
		if err != nil {
			return nil, fmt.Errorf("read stream: %w", err)
		}
		return b, nil
	case KindData:
		return h.data, nil
	case KindMemory:
		return nil, NotImplementedError("data view of memory object")
	default:
		return nil, InvalidInputError("no data bound to handle")
	}
}

// Base64 returns the current data view encoded as base64 text.
func (h *Handle) Base64() (string, error) {
	b, err := h.viewBytes()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// MemoryObject is reserved for future representations.
func (h *Handle) MemoryObject() (any, error) {
	return nil, NotImplementedError("memory object representation")
}

// Release drops the materialized temporary file and any stream the
// handle owns. Safe to call multiple times; invoked by the owning
// request context when it ends.
func (h *Handle) Release() {
	h.closeOwnedStream()
	h.removeTempFile()
}

// isText decides whether file content should be treated as text. A
// declared format wins; otherwise the first 512 bytes are sniffed for a
// zero byte. Best effort, not a guarantee against misclassification.
func (h *Handle) isText(content []byte) bool {
	if h.format != nil {
		if h.format.Encoding == "base64" {
			return false
		}
		if strings.HasPrefix(h.format.MimeType, "text/") {
			return true
		}
	}
	n := len(content)
	if n > sniffLen {
		n = sniffLen
	}
	return !bytes.ContainsRune(content[:n], 0)
}

// viewBytes renders the current source as bytes without caring about
// the text/binary distinction.
func (h *Handle) viewBytes() ([]byte, error) {
	switch h.kind {
	case KindFile:
		return os.ReadFile(h.filePath)
	case KindStream:
		return io.ReadAll(h.stream)
	case KindData:
		return h.dataBytes(), nil
	case KindMemory:
		return nil, NotImplementedError("byte view of memory object")
	default:
		return nil, InvalidInputError("no data bound to handle")
	}
}

func (h *Handle) dataBytes() []byte {
	switch v := h.data.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return []byte(cast.ToString(v))
	}
}

func (h *Handle) closeOwnedStream() {
	if h.ownedStream != nil {
		h.ownedStream.Close()
		h.ownedStream = nil
	}
}

func (h *Handle) removeTempFile() {
	if h.tempFile != "" {
		os.Remove(h.tempFile)
		h.tempFile = ""
	}
}

// BindDefault binds a declared default value using the given source
// kind. Used when an input declaration carries a default.
func (h *Handle) BindDefault(value any, kind SourceKind) error {
	if value == nil {
		return nil
	}
	switch kind {
	case KindFile:
		return h.BindFile(cast.ToString(value))
	case KindStream:
		r, ok := value.(io.Reader)
		if !ok {
			return InvalidInputError("default value for stream source is not a reader")
		}
		return h.BindStream(r)
	case KindData:
		return h.BindData(value)
	default:
		return InvalidInputError("unsupported default source kind %s", kind)
	}
}
