package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Quarterly</w:t></w:r><w:r><w:t xml:space="preserve"> report</w:t></w:r></w:p>
    <w:p><w:r><w:t>   </w:t></w:r></w:p>
    <w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t></w:r></w:p>
    <w:p><w:r><w:t>line one</w:t><w:br/><w:t>line two</w:t></w:r></w:p>
    <w:p/>
  </w:body>
</w:document>`

func writeDOCX(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestDOCXParagraphs(t *testing.T) {
	path := writeDOCX(t, map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   sampleDocument,
	})

	got, err := DOCXParagraphs(path)
	if err != nil {
		t.Fatalf("DOCXParagraphs returned error: %v", err)
	}
	want := []string{"Quarterly report", "Name\tValue", "line one line two"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("paragraphs = %q, want %q", got, want)
	}
}

func TestDOCXParagraphsMissingBody(t *testing.T) {
	path := writeDOCX(t, map[string]string{"word/styles.xml": "<w:styles/>"})
	if _, err := DOCXParagraphs(path); err == nil || !strings.Contains(err.Error(), "word/document.xml") {
		t.Fatalf("expected missing body error, got %v", err)
	}
}

func TestDOCXParagraphsNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := DOCXParagraphs(path); err == nil {
		t.Fatalf("expected error for non-zip input")
	}
}

func TestParseDocumentXMLMalformed(t *testing.T) {
	if _, err := parseDocumentXML(strings.NewReader("<w:document><w:p>")); err == nil {
		t.Fatalf("expected error for truncated xml")
	}
}

func TestPDFLinesRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("plain text, not a pdf"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := PDFLines(path); err == nil {
		t.Fatalf("expected error for invalid pdf")
	}
}
