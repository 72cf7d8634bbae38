package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/janpisl/gowps/internal/config"
	"github.com/janpisl/gowps/internal/inout"
)

// FreeSpaceFunc probes a volume and returns its block size and the
// bytes currently available. Injectable for tests.
type FreeSpaceFunc func(path string) (blockSize, availBytes int64, err error)

// FileBackend copies finished outputs into a per-request subdirectory
// of the target and returns a URL under the configured base.
type FileBackend struct {
	target    string
	baseURL   string
	freeSpace FreeSpaceFunc
}

func NewFileBackend(cfg config.StorageConfig) *FileBackend {
	return &FileBackend{
		target:    cfg.Target,
		baseURL:   cfg.BaseURL,
		freeSpace: diskFreeSpace,
	}
}

func (b *FileBackend) Store(_ context.Context, output *inout.ComplexOutput) (Descriptor, error) {
	srcPath, err := output.File()
	if err != nil {
		return Descriptor{}, err
	}
	st, err := os.Stat(srcPath)
	if err != nil {
		return Descriptor{}, fmt.Errorf("stat %s: %w", srcPath, err)
	}

	blockSize, avail, err := b.freeSpace(b.target)
	if err != nil {
		return Descriptor{}, StorageUnavailableError("probe free space on "+b.target, err)
	}
	// space is consumed in whole blocks, not bytes
	actualSize := ((st.Size() + blockSize - 1) / blockSize) * blockSize
	if avail < actualSize {
		return Descriptor{}, OutOfStorageError(b.target, srcPath)
	}

	requestID := output.RequestID()
	if requestID == "" {
		requestID = uuid.New().String()
	}
	dir := filepath.Join(b.target, requestID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Descriptor{}, fmt.Errorf("create request dir: %w", err)
	}

	name := filepath.Base(srcPath)
	ext := filepath.Ext(name)
	if ext == "" && output.Format() != nil {
		ext = output.Format().Extension
		name += ext
	}

	dst, finalName, err := openDestination(dir, name, ext)
	if err != nil {
		return Descriptor{}, fmt.Errorf("create output file: %w", err)
	}
	defer dst.Close()

	src, err := os.Open(srcPath)
	if err != nil {
		return Descriptor{}, fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return Descriptor{}, WriteFailedError("copy output to "+dir, err)
	}

	url := joinURL(b.baseURL, requestID, finalName)
	log.Printf("Stored file output %s at %s", finalName, url)

	return Descriptor{Kind: KindPath, Location: finalName, URL: url}, nil
}

// openDestination creates the output file, falling back to a uniquely
// suffixed name when the computed one already exists. Collisions under
// the same request id are narrowed, not eliminated.
func openDestination(dir, name, ext string) (*os.File, string, error) {
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err == nil {
		return f, name, nil
	}
	if !os.IsExist(err) {
		return nil, "", err
	}
	prefix := strings.TrimSuffix(name, ext)
	f, err = os.CreateTemp(dir, prefix+"_*"+ext)
	if err != nil {
		return nil, "", err
	}
	return f, filepath.Base(f.Name()), nil
}

func joinURL(base string, segments ...string) string {
	url := strings.TrimRight(base, "/")
	for _, s := range segments {
		url += "/" + s
	}
	return url
}
