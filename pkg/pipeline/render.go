package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/document"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/layouter"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/render"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/render/svg"
)

// pngScale renders PNGs at twice the layout resolution.
const pngScale = 2.0

// Render encodes a layout result without caching. SVG, PNG and PDF show
// the first diagram.
func Render(ctx context.Context, l *layouter.Result, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON, FormatYAML:
		var buf bytes.Buffer
		err = document.WriteResult(&buf, l, document.Format(format))
		data = buf.Bytes()
	case FormatSVG:
		data, err = svg.Render(l)
	case FormatPNG, FormatPDF:
		var out []byte
		if out, err = svg.Render(l); err != nil {
			break
		}
		if format == FormatPNG {
			data, err = render.ToPNG(ctx, out, pngScale)
		} else {
			data, err = render.ToPDF(ctx, out)
		}
	default:
		return nil, ValidateFormat(format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}
