package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeduceFormat(t *testing.T) {
	require.Equal(t, FormatCSV, DeduceFormat("", ""))
	require.Equal(t, FormatJSON, DeduceFormat("json", ""))
	require.Equal(t, FormatJSON, DeduceFormat("JSON", ""))

	// the output file extension wins over the flag
	require.Equal(t, FormatJSON, DeduceFormat("csv", "report.json"))
	require.Equal(t, FormatCSV, DeduceFormat("json", "report.csv"))

	// unknown extensions fall back to the flag
	require.Equal(t, FormatJSON, DeduceFormat("json", "report.txt"))
	require.Equal(t, FormatCSV, DeduceFormat("", "report"))
}

func TestSinkStdout(t *testing.T) {
	sink, err := NewSink("")
	require.NoError(t, err)
	require.Equal(t, "", sink.Path())
	require.NoError(t, sink.Close())
}

func TestSinkFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	sink, err := NewSink(path)
	require.NoError(t, err)

	_, err = sink.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}

func TestJSONArrayWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewJSONArrayWriter(&buf)
	require.NoError(t, err)

	require.NoError(t, w.Write(map[string]string{"key": "one"}))
	require.NoError(t, w.Write(map[string]string{"key": "two"}))
	require.NoError(t, w.Close())

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "one", decoded[0]["key"])
	require.Equal(t, "two", decoded[1]["key"])
}

func TestJSONArrayWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewJSONArrayWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var decoded []interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Empty(t, decoded)
}
