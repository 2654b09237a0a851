package pipeline

import (
	"mime"
	"strings"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/document"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model"
)

// Parse decodes and validates a document. An empty format sniffs the
// content.
func Parse(data []byte, format document.Format) (*model.Definitions, error) {
	return document.Decode(data, format)
}

// FormatFromContentType maps an HTTP Content-Type to a document format.
// Unknown or missing types return the empty format, which sniffs.
func FormatFromContentType(contentType string) document.Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return document.FormatJSON
	case strings.Contains(mediaType, "yaml"):
		return document.FormatYAML
	}
	return ""
}
