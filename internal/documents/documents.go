// Package documents pulls the package documents out of a booking or print response.
package documents

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoDocuments is returned by Extract when the response carries no package documents.
var ErrNoDocuments = errors.New("response carries no package documents")

// Document is one decoded package document.
type Document struct {
	Reference string
	Format    string
	Data      []byte
}

var separators = strings.NewReplacer("/", "_", "\\", "_")

// FileName returns reference.format, with path separators replaced in both parts.
func (d Document) FileName() string {
	name := separators.Replace(d.Reference)
	if name == "" || name == "." || name == ".." {
		name = "document"
	}
	format := strings.Trim(separators.Replace(strings.ToLower(d.Format)), ".")
	if format == "" {
		format = "bin"
	}
	return name + "." + format
}

// Extract walks a booking response (a list of shipments, or a single shipment) and
// decodes every packageDocs entry.
func Extract(response interface{}) ([]Document, error) {
	var shipments []interface{}
	switch v := response.(type) {
	case []interface{}:
		shipments = v
	case map[string]interface{}:
		shipments = []interface{}{v}
	default:
		return nil, ErrNoDocuments
	}

	var docs []Document
	for i, s := range shipments {
		shipment, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		reference, _ := shipment["reference"].(string)
		packageDocs, _ := shipment["packageDocs"].([]interface{})

		for j, pd := range packageDocs {
			entry, ok := pd.(map[string]interface{})
			if !ok {
				continue
			}
			format, _ := entry["fileFormat"].(string)
			encoded, _ := entry["data"].(string)

			data, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, fmt.Errorf("shipment %d document %d: decoding data: %w", i, j, err)
			}
			docs = append(docs, Document{Reference: reference, Format: format, Data: data})
		}
	}

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return docs, nil
}

// Write stores docs in dir and returns the written paths. A shipment with several documents
// of the same format gets a numeric suffix from the second one on.
func Write(dir string, docs []Document) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	seen := make(map[string]int, len(docs))
	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		name := doc.FileName()
		seen[name]++
		if n := seen[name]; n > 1 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
		}

		path := filepath.Join(dir, name)
		if rel, err := filepath.Rel(dir, path); err != nil || rel != filepath.Base(path) {
			return paths, fmt.Errorf("document %q resolves outside %s", name, dir)
		}
		if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
