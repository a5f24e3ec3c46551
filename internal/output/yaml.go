package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes YAML documents.
type YAMLWriter struct {
	w   *bufio.Writer
	enc *yaml.Encoder
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	bw := bufio.NewWriter(w)
	enc := yaml.NewEncoder(bw)
	enc.SetIndent(2)
	return &YAMLWriter{w: bw, enc: enc}
}

// Write writes a single item as a YAML document.
func (w *YAMLWriter) Write(data any) error {
	return w.enc.Encode(data)
}

// Flush closes the encoder and flushes the buffer.
func (w *YAMLWriter) Flush() error {
	if err := w.enc.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}
