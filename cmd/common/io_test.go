package common_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/camp-registration/cmd/common"
)

type item struct {
	Name  string `json:"name" yaml:"name" csv:"name"`
	Count int    `json:"count" yaml:"count" csv:"count"`
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o600))

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "stdin when empty", path: "", want: "from stdin"},
		{name: "stdin when dash", path: "-", want: "from stdin"},
		{name: "file", path: path, want: "from file"},
		{name: "missing file", path: filepath.Join(dir, "nope"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := common.ReadInput(tt.path, strings.NewReader("from stdin"))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestWriteOutput(t *testing.T) {
	hello := func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	}

	var stdout bytes.Buffer
	require.NoError(t, common.WriteOutput("-", &stdout, hello))
	assert.Equal(t, "hello", stdout.String())

	path := filepath.Join(t.TempDir(), "out.txt")
	stdout.Reset()
	require.NoError(t, common.WriteOutput(path, &stdout, hello))
	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestRender(t *testing.T) {
	items := []item{{Name: "tent", Count: 2}}

	tests := []struct {
		format   string
		contains []string
		wantErr  bool
	}{
		{format: "", contains: []string{`"name": "tent"`, `"count": 2`}},
		{format: common.FormatJSON, contains: []string{`"name": "tent"`}},
		{format: common.FormatYAML, contains: []string{"- name: tent", "count: 2"}},
		{format: common.FormatCSV, contains: []string{"name,count", "tent,2"}},
		{format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			err := common.Render(&buf, tt.format, items)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "json", doc: `{"name": "tent", "count": 3}`},
		{name: "yaml", doc: "name: tent\ncount: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got item
			require.NoError(t, common.Decode([]byte(tt.doc), &got))
			assert.Equal(t, item{Name: "tent", Count: 3}, got)
		})
	}

	var got item
	assert.Error(t, common.Decode([]byte("name: [unterminated"), &got))
}
