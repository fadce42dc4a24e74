// Package extract pulls raw text out of binary document formats.
package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// DOCXParagraphs returns the trimmed, non-empty paragraphs of a DOCX file.
// Runs are concatenated, tabs are kept and line breaks become spaces.
func DOCXParagraphs(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", docxBody, err)
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}
	return nil, fmt.Errorf("docx archive has no %s", docxBody)
}

func parseDocumentXML(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	paragraphs := []string{}

	var (
		current strings.Builder
		inPara  bool
		inText  bool
	)
	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
		current.Reset()
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", docxBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if inPara {
					flush()
				}
				inPara = true
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte(' ')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				flush()
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	flush()
	return paragraphs, nil
}
