package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fkhayef/receiptsplit/internal/apperr"
	"github.com/fkhayef/receiptsplit/internal/group"
	"github.com/fkhayef/receiptsplit/internal/receipt"
)

// Document is a parsed receipt file: the roster plus every receipt block
type Document struct {
	Roster      group.Roster
	Description string
	Receipts    []receipt.Descriptor
}

// DocumentDTO is the structured (YAML or JSON) form of a receipt file
type DocumentDTO struct {
	Names       []string                 `json:"names" yaml:"names"`
	Description string                   `json:"description" yaml:"description"`
	Receipts    []receipt.ReceiptRequest `json:"receipts" yaml:"receipts"`
}

// ToDocument resolves the DTO against its own roster
func (d *DocumentDTO) ToDocument() (*Document, error) {
	roster, err := group.NewRoster(d.Names)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Roster:      roster,
		Description: d.Description,
		Receipts:    make([]receipt.Descriptor, 0, len(d.Receipts)),
	}
	for i := range d.Receipts {
		desc, err := d.Receipts[i].ToDescriptor(roster, fmt.Sprintf("receipts[%d]", i))
		if err != nil {
			return nil, err
		}
		doc.Receipts = append(doc.Receipts, desc)
	}

	return doc, nil
}

// Format identifies an input encoding
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the encoding from a file extension; unknown extensions are text
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

// FormatFromContentType picks the encoding from an HTTP Content-Type header
func FormatFromContentType(contentType string) Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return FormatText
	}
	switch mediaType {
	case "application/json":
		return FormatJSON
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Parse decodes r in the given format
func Parse(r io.Reader, format Format) (*Document, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(r)
	case FormatJSON:
		return ParseJSON(r)
	default:
		return ParseText(r)
	}
}

// ParseFile opens path and decodes it by extension
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt file: %w", err)
	}
	defer f.Close()

	return Parse(f, FormatFromPath(path))
}

// ParseYAML decodes a YAML document; unknown keys are rejected.
// Decoder failures wrap ErrUndecodable and carry no apperr kind.
func ParseYAML(r io.Reader) (*Document, error) {
	var dto DocumentDTO
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&dto); err != nil {
		if err == io.EOF {
			return nil, apperr.Format("parser.yaml", "", ErrEmptyInput)
		}
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	return dto.ToDocument()
}

// ParseJSON decodes a JSON document; unknown keys are rejected
func ParseJSON(r io.Reader) (*Document, error) {
	var dto DocumentDTO
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dto); err != nil {
		if err == io.EOF {
			return nil, apperr.Format("parser.json", "", ErrEmptyInput)
		}
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	return dto.ToDocument()
}
