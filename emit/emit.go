// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package emit writes calibration tables in the forms consumed by firmware
// and tools.
//
// Table entries are rounded to integers on emission.
package emit

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/warthog618/daclut"
)

// Format names, as accepted by Write.
const (
	FormatC      = "c"
	FormatJSON   = "json"
	FormatBinary = "bin"
)

// DefaultName is the identifier of the table in C output.
const DefaultName = "ADC_LUT"

var (
	// ErrUnknownFormat indicates the named format is not supported.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrInvalidDocument indicates a document is inconsistent with its
	// geometry.
	ErrInvalidDocument = errors.New("invalid document")
)

// Document is a calibration table with the context it was built in.
type Document struct {
	Geometry daclut.Geometry `json:"geometry"`
	Created  time.Time       `json:"created"`
	Cycles   int             `json:"cycles"`
	LUT      []uint16        `json:"lut"`

	// Name is the identifier used for C output.
	Name string `json:"-"`
}

// NewDocument creates a document from a built table.
func NewDocument(lut daclut.LUT, g daclut.Geometry, cycles int) Document {
	return Document{
		Geometry: g,
		Created:  time.Now().UTC().Truncate(time.Second),
		Cycles:   cycles,
		LUT:      lut.Round(),
		Name:     DefaultName,
	}
}

// Validate checks the table matches the geometry.
func (d Document) Validate() error {
	if err := d.Geometry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if len(d.LUT) != d.Geometry.ADCRange {
		return fmt.Errorf("%w: %d entries for ADC range %d",
			ErrInvalidDocument, len(d.LUT), d.Geometry.ADCRange)
	}
	return nil
}

// Formats returns the names of the supported formats.
func Formats() []string {
	return []string{FormatC, FormatJSON, FormatBinary}
}

// Write writes the document to w in the named format.
func Write(w io.Writer, format string, d Document) error {
	switch format {
	case FormatC:
		name := d.Name
		if name == "" {
			name = DefaultName
		}
		return CTable(w, d.LUT, name)
	case FormatJSON:
		return JSON(w, d)
	case FormatBinary:
		return Binary(w, d.LUT)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// CTable writes the table as a C array definition placed in program memory.
//
// Entries are comma separated, sixteen to a line.
func CTable(w io.Writer, lut []uint16, name string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "const uint16_t %s[%d] PROGMEM = {\n", name, len(lut))
	for i, v := range lut {
		fmt.Fprintf(bw, "%d", v)
		if i < len(lut)-1 {
			bw.WriteByte(',')
		}
		if i%16 == 15 || i == len(lut)-1 {
			bw.WriteByte('\n')
		}
	}
	bw.WriteString("};\n")
	return bw.Flush()
}

// JSON writes the document as indented JSON.
func JSON(w io.Writer, d Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ReadJSON reads a document written by JSON.
//
// The document is validated against its geometry.
func ReadJSON(r io.Reader) (Document, error) {
	var d Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	d.Name = DefaultName
	return d, nil
}

// Binary writes the table as consecutive little endian uint16 values.
func Binary(w io.Writer, lut []uint16) error {
	return binary.Write(w, binary.LittleEndian, lut)
}

// PlotPoint writes a point in the form accepted by the serial plotter,
// e.g. "Data1 16 Data2 17".
func PlotPoint(w io.Writer, x, y int) error {
	_, err := fmt.Fprintf(w, "Data1 %d Data2 %d\n", x, y)
	return err
}
