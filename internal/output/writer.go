package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Output formats supported by the export commands
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// Sink is a report destination: stdout or a file
type Sink struct {
	writer io.Writer
	file   *os.File
	path   string
}

// NewSink opens a report destination. An empty path means stdout.
func NewSink(path string) (*Sink, error) {
	if path == "" {
		return &Sink{writer: os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return &Sink{writer: f, file: f, path: path}, nil
}

// Write implements io.Writer
func (s *Sink) Write(p []byte) (int, error) {
	return s.writer.Write(p)
}

// Path returns the output file path, empty for stdout
func (s *Sink) Path() string {
	return s.path
}

// Close closes the underlying file, if any
func (s *Sink) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// DeduceFormat returns the output format for a command: the file extension
// wins over the format flag when it names a known format
func DeduceFormat(format, outputFile string) string {
	if outputFile != "" {
		if idx := strings.LastIndex(outputFile, "."); idx >= 0 {
			switch ext := strings.ToLower(outputFile[idx+1:]); ext {
			case FormatCSV, FormatJSON:
				return ext
			}
		}
	}
	if format == "" {
		return FormatCSV
	}
	return strings.ToLower(format)
}

// JSONArrayWriter streams a JSON array of objects element by element
type JSONArrayWriter struct {
	w     io.Writer
	first bool
	enc   *json.Encoder
}

// NewJSONArrayWriter starts a JSON array on w
func NewJSONArrayWriter(w io.Writer) (*JSONArrayWriter, error) {
	if _, err := fmt.Fprint(w, "[\n"); err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("  ", "  ")
	return &JSONArrayWriter{w: w, first: true, enc: enc}, nil
}

// Write appends one element to the array
func (j *JSONArrayWriter) Write(v interface{}) error {
	if !j.first {
		if _, err := fmt.Fprint(j.w, ",\n"); err != nil {
			return err
		}
	}
	j.first = false
	if _, err := fmt.Fprint(j.w, "  "); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		return err
	}
	_, err = j.w.Write(data)
	return err
}

// Close terminates the array
func (j *JSONArrayWriter) Close() error {
	_, err := fmt.Fprint(j.w, "\n]\n")
	return err
}
