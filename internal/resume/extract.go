// Package resume turns an uploaded resume into the info/job dictionaries the
// ranking runs on.
package resume

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrUnsupportedType = errors.New("only PDF and DOCX files are supported")
	ErrNoText          = errors.New("could not extract text from resume")
)

// Kind is the accepted upload type, decided by extension.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

func KindOf(filename string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".pdf":
		return KindPDF, nil
	case ".docx":
		return KindDOCX, nil
	default:
		return "", ErrUnsupportedType
	}
}

// Extractor pulls plain text out of a resume. PDFs go through pdftotext, so
// only documents with a text layer work.
type Extractor struct {
	PDFToTextPath string
	Timeout       time.Duration
}

func (e Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	kind, err := KindOf(filename)
	if err != nil {
		return "", err
	}

	var text string
	switch kind {
	case KindPDF:
		text, err = e.pdfText(ctx, data)
	case KindDOCX:
		text, err = DOCXText(data)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

func (e Extractor) pdfText(ctx context.Context, data []byte) (string, error) {
	bin := strings.TrimSpace(e.PDFToTextPath)
	if bin == "" {
		bin = "pdftotext"
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	tmp, err := os.CreateTemp("", "resume-*.pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-layout", "-enc", "UTF-8", tmp.Name(), "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdf extraction: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// DOCXText reads word/document.xml and keeps paragraph breaks.
func DOCXText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx: word/document.xml missing")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	defer rc.Close()

	return documentText(rc)
}

func documentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
