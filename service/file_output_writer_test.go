package service

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/yieldscan/domain"
)

func TestFileOutputWriter_ToWriter(t *testing.T) {
	var status, out bytes.Buffer
	w := NewFileOutputWriter(&status)

	err := w.Write(&out, "", domain.OutputFormatText, func(wr io.Writer) error {
		_, err := io.WriteString(wr, "report")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "report", out.String())
	assert.Empty(t, status.String())
}

func TestFileOutputWriter_ToFile(t *testing.T) {
	var status, out bytes.Buffer
	w := NewFileOutputWriter(&status)
	path := filepath.Join(t.TempDir(), "reports", "nested", "routes.json")

	err := w.Write(&out, path, domain.OutputFormatJSON, func(wr io.Writer) error {
		_, err := io.WriteString(wr, "{}")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
	assert.Empty(t, out.String())
	assert.Contains(t, status.String(), "JSON report generated: ")
	assert.Contains(t, status.String(), "routes.json")
}

func TestFileOutputWriter_WriteFuncError(t *testing.T) {
	w := NewFileOutputWriter(io.Discard)
	err := w.Write(io.Discard, "", domain.OutputFormatCSV, func(io.Writer) error {
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeOutputError, domain.ErrorCode(err))
}

func TestOutputFormatResolver_Determine(t *testing.T) {
	r := NewOutputFormatResolver()

	tests := []struct {
		name                 string
		json, yaml, csv, dot bool
		fallback             string
		want                 domain.OutputFormat
		wantErr              bool
	}{
		{name: "default text", want: domain.OutputFormatText},
		{name: "fallback from config", fallback: "yaml", want: domain.OutputFormatYAML},
		{name: "flag beats fallback", dot: true, fallback: "yaml", want: domain.OutputFormatDOT},
		{name: "json", json: true, want: domain.OutputFormatJSON},
		{name: "csv", csv: true, want: domain.OutputFormatCSV},
		{name: "conflict", json: true, csv: true, wantErr: true},
		{name: "bad fallback", fallback: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Determine(tt.json, tt.yaml, tt.csv, tt.dot, tt.fallback)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
