package layout

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DomainDocument separates document digests from any other hash of the
// same bytes. The version suffix allows the encoding to change later.
const DomainDocument = "engraver/document/v1"

// Document is the paginated result of one layout run.
type Document struct {
	QuarterTick  float64 `json:"quarter_tick"`
	Length       float64 `json:"length"`
	PrintWidthMM float64 `json:"print_width_mm"`
	Pages        []Page  `json:"pages"`
}

// Lines returns every line in page order.
func (d *Document) Lines() []Line {
	var out []Line
	for _, p := range d.Pages {
		out = append(out, p.Lines...)
	}
	return out
}

// Events returns every event in document order.
func (d *Document) Events() []Event {
	var out []Event
	for _, p := range d.Pages {
		for _, l := range p.Lines {
			out = append(out, l.Events...)
		}
	}
	return out
}

// Summary is a compact description of a document.
type Summary struct {
	Pages  int    `json:"pages"`
	Lines  int    `json:"lines"`
	Events int    `json:"events"`
	Digest string `json:"digest"`
}

// Summarize counts pages, lines and events and computes the digest.
func (d *Document) Summarize() (Summary, error) {
	digest, err := d.Digest()
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Pages: len(d.Pages), Digest: digest}
	for _, p := range d.Pages {
		s.Lines += len(p.Lines)
		for _, l := range p.Lines {
			s.Events += len(l.Events)
		}
	}
	return s, nil
}

// Encode returns the JSON encoding of the document. The encoding is stable:
// field order is fixed by the struct definitions and HTML escaping is off.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeIndent is Encode with two-space indentation for humans.
func (d *Document) EncodeIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// Digest returns the hex SHA-256 of the encoded document, computed as
// SHA256(DomainDocument + 0x00 + encoding).
func (d *Document) Digest() (string, error) {
	data, err := d.Encode()
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(DomainDocument))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
