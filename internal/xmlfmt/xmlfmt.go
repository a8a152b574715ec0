// Package xmlfmt holds the small set of helpers every tagged turn document
// (intel, orders) is read and written with.
//
// Reads are case-insensitive on element names. Writes use locale-independent
// number formatting and upper-case hexadecimal for keys.
package xmlfmt

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Children walks the direct child elements of start and hands each one to fn
// together with its lower-cased local name. fn must consume the element it is
// given, either by decoding it or with d.Skip().
func Children(d *xml.Decoder, start xml.StartElement, fn func(tag string, el xml.StartElement) error) error {
	for {
		tok, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("<%s>: unexpected end of document", start.Name.Local)
			}
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := fn(strings.ToLower(t.Name.Local), t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func Text(d *xml.Decoder, el xml.StartElement) (string, error) {
	var s string
	if err := d.DecodeElement(&s, &el); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func Int(d *xml.Decoder, el xml.StartElement) (int, error) {
	s, err := Text(d, el)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("<%s>: %w", el.Name.Local, err)
	}
	return n, nil
}

func Bool(d *xml.Decoder, el xml.StartElement) (bool, error) {
	s, err := Text(d, el)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("<%s>: %w", el.Name.Local, err)
	}
	return b, nil
}

func Hex(d *xml.Decoder, el xml.StartElement) (uint64, error) {
	s, err := Text(d, el)
	if err != nil {
		return 0, err
	}
	k, err := ParseKey(s)
	if err != nil {
		return 0, fmt.Errorf("<%s>: %w", el.Name.Local, err)
	}
	return k, nil
}

// FormatKey renders an object key the way every document stores it.
func FormatKey(k uint64) string {
	return strings.ToUpper(strconv.FormatUint(k, 16))
}

func ParseKey(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 16, 64)
}

// Writer wraps an xml.Encoder and keeps the first error, so codecs can emit a
// whole element tree and check once at the end.
type Writer struct {
	enc *xml.Encoder
	err error
}

func NewWriter(w io.Writer) *Writer {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &Writer{enc: enc}
}

func (w *Writer) Err() error { return w.err }

// Header writes the XML declaration. Call it before the root element.
func (w *Writer) Header() {
	w.token(xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="utf-8"`)})
}

func (w *Writer) Start(name string) {
	w.token(xml.StartElement{Name: xml.Name{Local: name}})
}

func (w *Writer) End(name string) {
	w.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (w *Writer) String(name, v string) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeElement(v, xml.StartElement{Name: xml.Name{Local: name}})
}

func (w *Writer) Int(name string, v int) {
	w.String(name, strconv.Itoa(v))
}

func (w *Writer) Bool(name string, v bool) {
	w.String(name, strconv.FormatBool(v))
}

func (w *Writer) Hex(name string, k uint64) {
	w.String(name, FormatKey(k))
}

func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.enc.Flush()
	return w.err
}

func (w *Writer) token(t xml.Token) {
	if w.err != nil {
		return
	}
	w.err = w.enc.EncodeToken(t)
}
