package runner

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/jonathan/listing-extractor/internal/listing"
)

// EncodeRecords renders records as a pretty-printed JSON array. Non-ASCII and
// HTML characters are written as is.
func EncodeRecords(records []listing.Record) ([]byte, error) {
	if records == nil {
		records = []listing.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, eris.Wrap(err, "encode records")
	}
	return buf.Bytes(), nil
}

// WriteOutput replaces the file at path with the encoded records. The data is
// written to a temporary file in the same directory first so a failed write
// leaves any previous output intact.
func WriteOutput(path string, records []listing.Record) error {
	data, err := EncodeRecords(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return eris.Wrapf(err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return eris.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "close %s", path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "chmod %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return eris.Wrapf(err, "rename output to %s", path)
	}
	return nil
}
