package common

import (
	"fmt"
	"os"
	"strings"

	"hiredly/internal/errors"
	"hiredly/internal/utils"
)

// FileProcessor reads resume and job description inputs and writes results.
type FileProcessor struct {
	logger  *errors.Logger
	maxSize int64
}

// NewFileProcessor creates a file processor. maxSize bounds input files in
// bytes; zero disables the check.
func NewFileProcessor(logger *errors.Logger, maxSize int64) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &FileProcessor{logger: logger, maxSize: maxSize}
}

// ReadFile returns the plain text of filename. PDF and DOCX files are
// converted; anything else is read as text.
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}

	text, err := ExtractDocumentText(filename, data)
	if err != nil {
		return "", err
	}
	if utils.IsDocumentFile(filename) {
		fp.logger.Debug("Extracted document text",
			"filename", filename,
			"size", utils.FormatFileSize(int64(len(data))),
			"chars", len(text))
	}
	return text, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if err := utils.PrepareOutputFile(filename); err != nil {
		return errors.NewIOError("DIRECTORY_CREATE_FAILED",
			fmt.Sprintf("Cannot prepare output for %s", filename), err)
	}
	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateAndReadFiles validates and reads every input file in order.
// Empty documents are rejected since nothing could be analyzed.
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		if err := utils.ValidateInputFile(filename, fp.maxSize); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		if !utils.IsTextFile(filename) && !utils.IsDocumentFile(filename) {
			fp.logger.Warn("File may not be a text file, reading it as text",
				"filename", filename)
		}

		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(content) == "" {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("File %s has no readable text", filename), nil)
		}
		contents[i] = content
	}

	return contents, nil
}
