package documents_test

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/transsmart/internal/documents"
)

func parse(t *testing.T, raw string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestExtract(t *testing.T) {
	resp := parse(t, `[
		{"reference":"REF-1","packageDocs":[{"fileFormat":"PDF","data":"`+b64("label one")+`"}]},
		{"reference":"REF-2","packageDocs":[
			{"fileFormat":"ZPL","data":"`+b64("^XA^XZ")+`"},
			{"fileFormat":"PDF","data":"`+b64("label two")+`"}
		]}
	]`)

	docs, err := documents.Extract(resp)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, documents.Document{Reference: "REF-1", Format: "PDF", Data: []byte("label one")}, docs[0])
	assert.Equal(t, "ZPL", docs[1].Format)
	assert.Equal(t, []byte("^XA^XZ"), docs[1].Data)
	assert.Equal(t, "REF-2", docs[2].Reference)
}

func TestExtract_SingleShipment(t *testing.T) {
	resp := parse(t, `{"reference":"REF-1","packageDocs":[{"fileFormat":"PDF","data":"`+b64("x")+`"}]}`)

	docs, err := documents.Extract(resp)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestExtract_NoDocuments(t *testing.T) {
	for _, raw := range []string{`[]`, `[{"reference":"REF-1"}]`, `"booked"`, `null`} {
		_, err := documents.Extract(parse(t, raw))
		assert.ErrorIs(t, err, documents.ErrNoDocuments, raw)
	}
}

func TestExtract_InvalidBase64(t *testing.T) {
	resp := parse(t, `[{"reference":"REF-1","packageDocs":[{"fileFormat":"PDF","data":"***"}]}]`)

	_, err := documents.Extract(resp)
	require.Error(t, err)
	assert.NotErrorIs(t, err, documents.ErrNoDocuments)
}

func TestDocument_FileName(t *testing.T) {
	tests := []struct {
		doc  documents.Document
		want string
	}{
		{documents.Document{Reference: "REF-1", Format: "PDF"}, "REF-1.pdf"},
		{documents.Document{Reference: "a/b", Format: "zpl"}, "a_b.zpl"},
		{documents.Document{Reference: "..", Format: "PDF"}, "document.pdf"},
		{documents.Document{Reference: "REF-1"}, "REF-1.bin"},
		{documents.Document{Reference: "REF-1", Format: "pdf/../../escaped"}, "REF-1.pdf_.._.._escaped"},
		{documents.Document{Reference: "REF-1", Format: `..\x`}, "REF-1._x"},
		{documents.Document{Reference: "REF-1", Format: ".."}, "REF-1.bin"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.doc.FileName())
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "labels")
	docs := []documents.Document{
		{Reference: "REF-1", Format: "PDF", Data: []byte("one")},
		{Reference: "REF-1", Format: "PDF", Data: []byte("two")},
		{Reference: "REF-2", Format: "ZPL", Data: []byte("three")},
	}

	paths, err := documents.Write(dir, docs)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "REF-1.pdf"),
		filepath.Join(dir, "REF-1-2.pdf"),
		filepath.Join(dir, "REF-2.zpl"),
	}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestWrite_StaysInsideDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "out", "labels")
	docs := []documents.Document{
		{Reference: "REF", Format: "pdf/../../escaped", Data: []byte("x")},
		{Reference: "../REF", Format: "../../pdf", Data: []byte("y")},
	}

	paths, err := documents.Write(dir, docs)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	for _, p := range paths {
		assert.Equal(t, dir, filepath.Dir(p))
	}
	_, err = os.Stat(filepath.Join(root, "escaped"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "out", "escaped"))
	assert.True(t, os.IsNotExist(err))
}
