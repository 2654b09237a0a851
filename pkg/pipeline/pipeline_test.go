package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/config"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/document"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model"
)

const orders = `
id: defs
processes:
  - id: orders
    nodes:
      - {id: start, kind: startEvent}
      - {id: check, kind: task, name: Check}
      - {id: end, kind: endEvent}
    flows:
      - {id: f1, source: start, target: check}
      - {id: f2, source: check, target: end}
`

// memCache is an in-memory cache that counts hits.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func parse(t *testing.T) *model.Definitions {
	t.Helper()
	defs, err := Parse([]byte(orders), "")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return defs
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"yaml", false},
		{"png", false},
		{"pdf", false},
		{"SVG", true},
		{"dot", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
	if err := ValidateFormats([]string{"svg", "bmp"}); err == nil {
		t.Error("ValidateFormats should reject bmp")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("ValidateFormats(nil) error = %v", err)
	}
}

func TestRunnerLayoutCaches(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	opts := Options{Layout: config.DefaultLayout()}

	first, err := r.Layout(ctx, parse(t), opts)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if first.CacheHit {
		t.Error("first run should miss the cache")
	}
	if first.Stats.Nodes != 3 || first.Stats.Shapes != 3 || first.Stats.Edges != 2 {
		t.Errorf("Stats = %+v, want 3 nodes, 3 shapes, 2 edges", first.Stats)
	}

	second, err := r.Layout(ctx, parse(t), opts)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.RunID == first.RunID || second.RunID == "" {
		t.Errorf("RunID = %q, want a fresh id", second.RunID)
	}
	if second.DocumentHash != first.DocumentHash {
		t.Error("equal documents should hash equally")
	}
	s, ok := second.Layout.Shape("check")
	if !ok || s.Bounds.X != 175 || s.Bounds.Y != 30 {
		t.Errorf("cached check shape = %+v, %v, want at 175,30", s, ok)
	}
	if e, ok := second.Layout.Edge("f1"); !ok || len(e.Waypoints) != 2 {
		t.Errorf("cached f1 edge = %+v, %v", e, ok)
	}

	refreshed, err := r.Layout(ctx, parse(t), Options{Layout: config.DefaultLayout(), Refresh: true})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if refreshed.CacheHit {
		t.Error("Refresh should skip the cache")
	}

	wide := config.DefaultLayout()
	wide.CellWidth = 200
	other, err := r.Layout(ctx, parse(t), Options{Layout: wide})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if other.CacheHit {
		t.Error("different geometry should miss the cache")
	}
}

func TestRunnerLayoutErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	bad := config.DefaultLayout()
	bad.CellWidth = 0

	_, err := r.Layout(context.Background(), parse(t), Options{Layout: bad})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Layout() error = %v, want INVALID_CONFIG", err)
	}
	if _, err := r.Layout(context.Background(), nil, Options{Layout: config.DefaultLayout()}); err == nil {
		t.Error("Layout(nil) should fail")
	}
}

func TestRunnerRender(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	res, err := r.Layout(ctx, parse(t), Options{Layout: config.DefaultLayout()})
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	tests := []struct {
		format string
		want   string
	}{
		{FormatSVG, "<svg"},
		{FormatJSON, `"diagrams"`},
		{FormatYAML, "diagrams:"},
	}
	for _, tt := range tests {
		out, err := r.Render(ctx, res.Layout, tt.format)
		if err != nil {
			t.Errorf("Render(%s) error = %v", tt.format, err)
			continue
		}
		if !strings.Contains(string(out), tt.want) {
			t.Errorf("Render(%s) lacks %q", tt.format, tt.want)
		}
	}

	hits := c.hits
	if _, err := r.Render(ctx, res.Layout, FormatSVG); err != nil {
		t.Fatalf("Render(svg) error = %v", err)
	}
	if c.hits != hits+1 {
		t.Error("second svg render should come from the cache")
	}

	if _, err := r.Render(ctx, res.Layout, "gif"); err == nil {
		t.Error("Render(gif) should fail")
	}
}

func TestFormatFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        document.Format
	}{
		{"application/json", document.FormatJSON},
		{"application/json; charset=utf-8", document.FormatJSON},
		{"application/vnd.process+json", document.FormatJSON},
		{"application/yaml", document.FormatYAML},
		{"text/x-yaml", document.FormatYAML},
		{"text/plain", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatFromContentType(tt.contentType); got != tt.want {
			t.Errorf("FormatFromContentType(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}
