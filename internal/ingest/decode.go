package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DecodeError indicates the uploaded content could not be turned into text.
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeText extracts plain text from an uploaded document. PDF and DOCX
// contents are parsed; anything else is treated as UTF-8 text.
func DecodeText(filename string, content []byte) (string, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		text, err := decodePDF(content)
		if err != nil {
			return "", &DecodeError{Filename: filename, Err: err}
		}
		return text, nil
	case ".docx":
		text, err := decodeDOCX(content)
		if err != nil {
			return "", &DecodeError{Filename: filename, Err: err}
		}
		return text, nil
	default:
		if !utf8.Valid(content) {
			return "", &DecodeError{Filename: filename, Err: errors.New("content is not valid UTF-8 text")}
		}
		return string(content), nil
	}
}

func decodePDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	text, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(text); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []struct {
			Runs []struct {
				Text []struct {
					Content string `xml:",chardata"`
				} `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

func decodeDOCX(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		return extractDocumentText(raw)
	}
	return "", errors.New("word/document.xml not found")
}

func extractDocumentText(raw []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", err
	}
	var result strings.Builder
	for _, p := range doc.Body.Paragraphs {
		for _, r := range p.Runs {
			for _, t := range r.Text {
				result.WriteString(t.Content)
			}
		}
		result.WriteString("\n")
	}
	return result.String(), nil
}
