// Package dataset reads and writes the pipeline's columnar datasets.
// Datasets are addressed by URI: a plain path is a local file, a gs://
// URI is an object in Google Cloud Storage.
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// ReadRows reads a whole parquet dataset into memory.
func ReadRows[T any](ctx context.Context, uri string) ([]T, error) {
	data, err := Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}

	rows, err := parquet.Read[T](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("ReadRows: decoding parquet %s: %w", uri, err)
	}

	return rows, nil
}

// WriteRows writes rows as a parquet dataset, fully replacing any previous
// file at the destination. The dataset is buffered and written in one shot
// so a failed run never leaves a partial file behind.
func WriteRows[T any](ctx context.Context, uri string, rows []T) error {
	var buf bytes.Buffer

	w := parquet.NewGenericWriter[T](&buf)
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("WriteRows: encoding parquet %s: %w", uri, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("WriteRows: finalizing parquet %s: %w", uri, err)
	}

	return Put(ctx, uri, buf.Bytes())
}

// Fetch returns the raw bytes of the dataset at uri.
func Fetch(ctx context.Context, uri string) ([]byte, error) {
	if IsGCSURI(uri) {
		return fetchFromGCS(ctx, uri)
	}

	data, err := os.ReadFile(uri)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading %s: %w", uri, err)
	}
	return data, nil
}

// Put stores data at uri. Local writes go through a temp file and rename so
// the destination is either the complete new dataset or untouched.
func Put(ctx context.Context, uri string, data []byte) error {
	if IsGCSURI(uri) {
		return putToGCS(ctx, uri, data)
	}

	dir := filepath.Dir(uri)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("Put: creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(uri)+".tmp*")
	if err != nil {
		return fmt.Errorf("Put: creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("Put: writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("Put: closing %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, uri); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("Put: renaming %s to %s: %w", tmpName, uri, err)
	}

	return nil
}

// IsGCSURI reports whether uri addresses an object in Cloud Storage.
func IsGCSURI(uri string) bool {
	return strings.HasPrefix(uri, "gs://")
}

// JoinURI appends a file name to a dataset directory, preserving the gs://
// scheme which filepath.Join would mangle.
func JoinURI(dir, name string) string {
	if IsGCSURI(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}
