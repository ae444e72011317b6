package embed

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter streams a response as a single JSON document. Object and array
// calls map directly onto JSON structure; element names supplied for array
// values are ignored.
type JSONWriter struct {
	w      *bufio.Writer
	stack  []bool // whether the current container already has an entry
	closed bool
}

// NewJSONWriter returns a writer emitting JSON to w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriter(w)}
}

func (j *JSONWriter) WriteStartResponse(string) error {
	return j.open('{')
}

func (j *JSONWriter) WriteEndResponse() error {
	if err := j.close('}'); err != nil {
		return err
	}
	return j.w.Flush()
}

func (j *JSONWriter) WriteProperty(name string, value any) error {
	if err := j.key(name); err != nil {
		return err
	}
	return j.value(value)
}

func (j *JSONWriter) WriteStartArrayProperty(name string) error {
	if err := j.key(name); err != nil {
		return err
	}
	j.stack = append(j.stack, false)
	return j.w.WriteByte('[')
}

func (j *JSONWriter) WriteEndArrayProperty() error {
	return j.close(']')
}

func (j *JSONWriter) WriteStartObjectProperty(name string) error {
	if err := j.key(name); err != nil {
		return err
	}
	j.stack = append(j.stack, false)
	return j.w.WriteByte('{')
}

func (j *JSONWriter) WriteEndObjectProperty() error {
	return j.close('}')
}

func (j *JSONWriter) WriteStartObject(string) error {
	return j.open('{')
}

func (j *JSONWriter) WriteEndObject() error {
	return j.close('}')
}

func (j *JSONWriter) WriteArrayValue(_ string, value any) error {
	if j.closed {
		return ErrWriterClosed
	}
	if err := j.comma(); err != nil {
		return err
	}
	return j.value(value)
}

// Close flushes buffered output and invalidates the writer.
func (j *JSONWriter) Close() error {
	if j.closed {
		return ErrWriterClosed
	}
	j.closed = true
	return j.w.Flush()
}

func (j *JSONWriter) open(b byte) error {
	if j.closed {
		return ErrWriterClosed
	}
	if err := j.comma(); err != nil {
		return err
	}
	j.stack = append(j.stack, false)
	return j.w.WriteByte(b)
}

func (j *JSONWriter) close(b byte) error {
	if j.closed {
		return ErrWriterClosed
	}
	if n := len(j.stack); n > 0 {
		j.stack = j.stack[:n-1]
	}
	return j.w.WriteByte(b)
}

// key writes the separating comma and the quoted property name.
func (j *JSONWriter) key(name string) error {
	if j.closed {
		return ErrWriterClosed
	}
	if err := j.comma(); err != nil {
		return err
	}
	if err := j.value(name); err != nil {
		return err
	}
	return j.w.WriteByte(':')
}

func (j *JSONWriter) comma() error {
	if n := len(j.stack); n > 0 {
		if j.stack[n-1] {
			if err := j.w.WriteByte(','); err != nil {
				return err
			}
		}
		j.stack[n-1] = true
	}
	return nil
}

func (j *JSONWriter) value(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = j.w.Write(b)
	return err
}
