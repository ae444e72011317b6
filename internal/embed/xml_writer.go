package embed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// XMLWriter streams a response as a single XML document. Every property
// becomes a named element with the value as text content; arrays become
// repeated sibling elements sharing the name supplied at each value call.
type XMLWriter struct {
	enc    *xml.Encoder
	names  []string // open element names, innermost last
	closed bool
}

// NewXMLWriter returns a writer emitting XML to w.
func NewXMLWriter(w io.Writer) *XMLWriter {
	return &XMLWriter{enc: xml.NewEncoder(w)}
}

func (x *XMLWriter) WriteStartResponse(name string) error {
	return x.openElement(name)
}

func (x *XMLWriter) WriteEndResponse() error {
	if err := x.closeElement(); err != nil {
		return err
	}
	return x.enc.Flush()
}

func (x *XMLWriter) WriteProperty(name string, value any) error {
	if err := x.openElement(name); err != nil {
		return err
	}
	if err := x.enc.EncodeToken(xml.CharData(formatXMLValue(value))); err != nil {
		return err
	}
	return x.closeElement()
}

func (x *XMLWriter) WriteStartArrayProperty(name string) error {
	return x.openElement(name)
}

func (x *XMLWriter) WriteEndArrayProperty() error {
	return x.closeElement()
}

func (x *XMLWriter) WriteStartObjectProperty(name string) error {
	return x.openElement(name)
}

func (x *XMLWriter) WriteEndObjectProperty() error {
	return x.closeElement()
}

func (x *XMLWriter) WriteStartObject(name string) error {
	return x.openElement(name)
}

func (x *XMLWriter) WriteEndObject() error {
	return x.closeElement()
}

func (x *XMLWriter) WriteArrayValue(name string, value any) error {
	return x.WriteProperty(name, value)
}

// Close flushes buffered output and invalidates the writer.
func (x *XMLWriter) Close() error {
	if x.closed {
		return ErrWriterClosed
	}
	x.closed = true
	return x.enc.Flush()
}

func (x *XMLWriter) openElement(name string) error {
	if x.closed {
		return ErrWriterClosed
	}
	if err := x.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}}); err != nil {
		return err
	}
	x.names = append(x.names, name)
	return nil
}

func (x *XMLWriter) closeElement() error {
	if x.closed {
		return ErrWriterClosed
	}
	n := len(x.names)
	if n == 0 {
		return fmt.Errorf("xml writer: no open element")
	}
	name := x.names[n-1]
	x.names = x.names[:n-1]
	return x.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func formatXMLValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
