package common

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"hiredly/internal/errors"
	"hiredly/internal/utils"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ExtractDocumentText turns the bytes of a resume file into plain text,
// choosing the decoder by the file's extension. Unknown extensions are
// treated as text.
func ExtractDocumentText(filename string, data []byte) (string, error) {
	switch utils.GetFileExtension(filename) {
	case ".pdf":
		return extractPDFText(data)
	case ".docx":
		return extractDocxText(data)
	default:
		return string(data), nil
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidFormat, "failed to read pdf", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("failed to read pdf page %d", i), err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeInvalidFormat, "failed to parse docx", err)
	}
	defer doc.Close()

	return stripXMLTags(doc.Editable().GetContent()), nil
}

// stripXMLTags reduces WordprocessingML to its text runs, one paragraph per line.
func stripXMLTags(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")

	var sb strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}

	lines := strings.Split(html.UnescapeString(sb.String()), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
