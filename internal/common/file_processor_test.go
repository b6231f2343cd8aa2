package common

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hiredly/internal/errors"
	"hiredly/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestValidateAndReadFiles(t *testing.T) {
	fp := NewFileProcessor(nil, 64)
	resume := writeTemp(t, "resume.txt", "Jane Doe, Python developer")
	job := writeTemp(t, "job.md", "Senior Python engineer")

	contents, err := fp.ValidateAndReadFiles(resume, job)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe, Python developer", "Senior Python engineer"}, contents)
}

func TestValidateAndReadFilesRejects(t *testing.T) {
	fp := NewFileProcessor(nil, 16)

	tests := []struct {
		name string
		path string
		typ  errors.ErrorType
	}{
		{"missing", filepath.Join(t.TempDir(), "nope.txt"), errors.ErrorTypeValidation},
		{"directory", t.TempDir(), errors.ErrorTypeValidation},
		{"too large", writeTemp(t, "big.txt", strings.Repeat("x", 17)), errors.ErrorTypeValidation},
		{"blank", writeTemp(t, "blank.txt", "  \n"), errors.ErrorTypeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fp.ValidateAndReadFiles(tt.path)
			assert.True(t, errors.IsType(err, tt.typ), "got %v", err)
		})
	}
}

func TestReadFileNotFound(t *testing.T) {
	_, err := NewFileProcessor(nil, 0).ReadFile(filepath.Join(t.TempDir(), "missing.txt"))

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrCodeFileNotFound, appErr.Code)
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "report.md")
	require.NoError(t, NewFileProcessor(nil, 0).WriteFile(path, "# Report"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(data))
}

func docxBytes(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?><w:document><w:body>` + body + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDocxText(t *testing.T) {
	data := docxBytes(t, `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Python &amp; AWS</w:t></w:r></w:p>`)

	text, err := ExtractDocumentText("resume.DOCX", data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nPython & AWS", text)
}

func TestExtractDocumentTextErrors(t *testing.T) {
	_, err := ExtractDocumentText("resume.pdf", []byte("not a pdf"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))

	_, err = ExtractDocumentText("resume.docx", []byte("not a zip"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))

	text, err := ExtractDocumentText("resume.rtf", []byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", text)
}

func TestStripXMLTags(t *testing.T) {
	in := "<w:p><w:r><w:t>  Skills  </w:t></w:r></w:p><w:p></w:p><w:p><w:t>Go</w:t><w:t>, SQL</w:t></w:p>"
	assert.Equal(t, "Skills\nGo, SQL", stripXMLTags(in))
}

func TestHandleOutput(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandlerTo(&buf, nil)

	res := types.TextResult{Task: "generate_linkedin_summary", Text: "I build things."}
	require.NoError(t, oh.HandleOutput(res, CommandConfig{OutputFormat: "text"}))
	assert.Equal(t, "I build things.\n", buf.String())

	path := filepath.Join(t.TempDir(), "summary.md")
	require.NoError(t, oh.HandleOutput(res, CommandConfig{OutputFormat: "markdown", OutputFile: path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# LinkedIn Summary\n\nI build things.\n", string(data))

	err = oh.HandleOutput(res, CommandConfig{OutputFormat: "xml"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRunCommand(t *testing.T) {
	var buf bytes.Buffer
	runner := &CommandRunner{
		Logger: errors.Discard(),
		Files:  NewFileProcessor(nil, 0),
		Output: NewOutputHandlerTo(&buf, nil),
	}
	resume := writeTemp(t, "resume.txt", "Jane Doe")
	job := writeTemp(t, "job.txt", "Go engineer")

	var logged bool
	err := RunCommand(context.Background(), runner, CommandConfig{OutputFormat: "json"},
		[]string{resume, job},
		func(contents []string) ([2]string, error) { return [2]string{contents[0], contents[1]}, nil },
		func(ctx context.Context, in [2]string) (map[string]string, error) {
			return map[string]string{"resume": in[0], "job": in[1]}, nil
		},
		func(in [2]string, cfg CommandConfig) { logged = true },
	)
	require.NoError(t, err)
	assert.True(t, logged)
	assert.JSONEq(t, `{"resume": "Jane Doe", "job": "Go engineer"}`, buf.String())

	called := false
	err = RunCommand(context.Background(), runner, CommandConfig{OutputFormat: "yaml"},
		[]string{resume},
		func(contents []string) (string, error) { return contents[0], nil },
		func(ctx context.Context, in string) (string, error) { called = true; return in, nil },
		nil,
	)
	assert.Error(t, err)
	assert.False(t, called, "operation must not run when the format is unsupported")
}
