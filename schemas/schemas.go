// Package schemas embeds the JSON Schemas describing extracted listings and
// the run output file.
package schemas

import (
	"embed"
	"fmt"
)

// File names of the embedded schemas.
const (
	ListingFile = "listing.schema.json"
	OutputFile  = "output.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the content of an embedded schema.
func Read(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("schema %s not found: %w", name, err)
	}
	return string(data), nil
}

// MustRead is Read for schemas known to be embedded.
func MustRead(name string) string {
	content, err := Read(name)
	if err != nil {
		panic(err)
	}
	return content
}

// Names lists the embedded schema files.
func Names() []string {
	return []string{ListingFile, OutputFile}
}
