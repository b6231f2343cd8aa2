package formatters

import (
	"encoding/json"
	"fmt"
	"sort"

	"hiredly/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisBundle", &BundleTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisBundle", &BundleMarkdownFormatter{})
	registry.RegisterFormatter("text", "TextResult", &TextResultFormatter{})
	registry.RegisterFormatter("markdown", "TextResult", &TextResultFormatter{markdown: true})
	registry.RegisterFormatter("text", "RouteOutcome", &RouteOutcomeFormatter{registry: registry, format: "text"})
	registry.RegisterFormatter("markdown", "RouteOutcome", &RouteOutcomeFormatter{registry: registry, format: "markdown"})
	registry.RegisterFormatter("text", "OptimizationResult", &OptimizationTextFormatter{})
	registry.RegisterFormatter("markdown", "OptimizationResult", &OptimizationTextFormatter{markdown: true})
	registry.RegisterFormatter("text", "Questions", &QuestionsFormatter{})
	registry.RegisterFormatter("markdown", "Questions", &QuestionsFormatter{markdown: true})
	registry.RegisterFormatter("text", "History", &HistoryFormatter{})
	registry.RegisterFormatter("markdown", "History", &HistoryFormatter{markdown: true})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisBundle:
		return "AnalysisBundle"
	case types.TextResult:
		return "TextResult"
	case types.RouteOutcome:
		return "RouteOutcome"
	case types.OptimizationResult:
		return "OptimizationResult"
	case []types.InterviewQuestion:
		return "Questions"
	case []types.HistoryEntry:
		return "History"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
