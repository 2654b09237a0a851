package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	perrors "github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/layouter"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/router"
)

const sample = `
id: defs
collaboration:
  id: collab
  participants:
    - {id: pool_a, name: A, process: proc_a}
    - {id: pool_b, name: B, process: proc_b}
  messageFlows:
    - {id: mf1, source: task_a, target: pool_b}
processes:
  - id: proc_a
    lanes:
      - id: lane_1
        name: L1
        nodes: [start, task_a]
        lanes: []
    nodes:
      - {id: start, kind: startEvent}
      - {id: task_a, kind: task, name: Do it}
      - id: sub
        kind: subProcess
        expanded: true
        nodes:
          - {id: inner, kind: task}
      - {id: timer, kind: boundaryEvent, attachedTo: task_a}
      - {id: doc, kind: dataObjectReference}
    flows:
      - {id: f1, source: start, target: task_a}
      - {id: f2, source: task_a, target: sub}
    associations:
      - {id: da1, source: doc, target: task_a}
  - id: proc_b
    nodes:
      - {id: wide, kind: task, width: 200, height: 80}
`

func TestReadYAML(t *testing.T) {
	defs, err := Read(strings.NewReader(sample), "")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if defs.ID != "defs" || len(defs.Processes) != 2 {
		t.Fatalf("defs = %+v", defs)
	}

	a := defs.Processes[0]
	if len(a.Nodes) != 5 || len(a.Flows) != 2 || len(a.Associations) != 1 {
		t.Errorf("proc_a has %d nodes, %d flows, %d associations", len(a.Nodes), len(a.Flows), len(a.Associations))
	}
	if len(a.SubProcesses) != 1 || !a.SubProcesses[0].IsExpanded() || len(a.SubProcesses[0].Nodes) != 1 {
		t.Errorf("sub-processes = %+v", a.SubProcesses)
	}

	timer, _ := defs.Lookup("timer")
	task, _ := defs.Lookup("task_a")
	if timer.AttachedTo != task || len(task.Attachers) != 1 {
		t.Errorf("timer.AttachedTo = %v, task.Attachers = %v", timer.AttachedTo, task.Attachers)
	}
	if task.Name != "Do it" || task.Lane != a.Lanes[0].Node {
		t.Errorf("task = %+v", task)
	}

	wide, _ := defs.Lookup("wide")
	if wide.Width != 200 {
		t.Errorf("wide.Width = %v, want 200", wide.Width)
	}
	if start, _ := defs.Lookup("start"); start.Width != 36 {
		t.Errorf("start.Width = %v, want the default 36", start.Width)
	}

	c := defs.Collaboration
	if c == nil || len(c.Participants) != 2 || c.Participants[1].Process != defs.Processes[1] {
		t.Fatalf("collaboration = %+v", c)
	}
	mf := c.MessageFlows[0]
	if mf.Source != task || mf.Target != c.Participants[1].Node || mf.Kind != process.EdgeMessageFlow {
		t.Errorf("mf1 = %v -> %v (%s)", mf.Source, mf.Target, mf.Kind)
	}
}

func TestReadJSONRoundTrip(t *testing.T) {
	defs, err := Decode([]byte(sample), FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteDefinitions(&buf, defs, FormatJSON); err != nil {
		t.Fatalf("WriteDefinitions() error = %v", err)
	}
	again, err := Read(&buf, "")
	if err != nil {
		t.Fatalf("Read() of written JSON error = %v", err)
	}

	c1, err := Canonical(defs)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := Canonical(again)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(c1, c2) {
		t.Errorf("Canonical() differs after round trip:\n%s\n%s", c1, c2)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code perrors.Code
	}{
		{"malformed", "processes: [", perrors.ErrCodeInvalidFormat},
		{"unknown field", "processes: []\ncolour: red", perrors.ErrCodeInvalidFormat},
		{"unknown flow target", `processes: [{id: p, nodes: [{id: a, kind: task}], flows: [{id: f, source: a, target: b}]}]`, perrors.ErrCodeInvalidInput},
		{"duplicate node", `processes: [{id: p, nodes: [{id: a, kind: task}, {id: a, kind: task}]}]`, perrors.ErrCodeInvalidInput},
		{"unknown kind", `processes: [{id: p, nodes: [{id: a, kind: widget}]}]`, perrors.ErrCodeInvalidInput},
		{"bad id", `processes: [{id: "1p", nodes: []}]`, perrors.ErrCodeInvalidInput},
		{"unknown participant process", `{"collaboration": {"id": "c", "participants": [{"id": "x", "process": "nope"}]}, "processes": []}`, perrors.ErrCodeInvalidInput},
		{"unknown host", `processes: [{id: p, nodes: [{id: b, kind: boundaryEvent, attachedTo: h}]}]`, perrors.ErrCodeInvalidInput},
		{"task with content", `processes: [{id: p, nodes: [{id: a, kind: task, nodes: [{id: b, kind: task}]}]}]`, perrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), "")
			if !perrors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := Decode([]byte("{}"), "toml"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode(toml) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); err != nil {
		t.Errorf("ReadFile() error = %v", err)
	}

	_, err := ReadFile(filepath.Join(dir, "missing.yaml"))
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", "", false},
		{"yaml", FormatYAML, false},
		{"YML", FormatYAML, false},
		{"json", FormatJSON, false},
		{"svg", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if got != tt.want || (err != nil) != tt.err {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}

	if got := FormatFromPath("a/b.JSON"); got != FormatJSON {
		t.Errorf("FormatFromPath(.JSON) = %q", got)
	}
	if got := FormatFromPath("doc.bpmn"); got != "" {
		t.Errorf("FormatFromPath(.bpmn) = %q", got)
	}
	if got := Sniff([]byte("  \n{\"id\": 1}")); got != FormatJSON {
		t.Errorf("Sniff(json) = %q", got)
	}
	if got := Sniff([]byte("id: x")); got != FormatYAML {
		t.Errorf("Sniff(yaml) = %q", got)
	}
}

func TestWriteResult(t *testing.T) {
	result := &layouter.Result{
		ID: "defs",
		Diagrams: []layouter.Diagram{{
			ID: "BPMNDiagram_p", Plane: "BPMNPlane_p", Element: "p",
			Shapes: []layouter.Shape{{ID: "a_di", Element: "a", Kind: "task", Bounds: router.Bounds{X: 25, Y: 30, Width: 100, Height: 80}}},
		}},
	}

	var buf bytes.Buffer
	if err := WriteResult(&buf, result, FormatJSON); err != nil {
		t.Fatalf("WriteResult(json) error = %v", err)
	}
	var decoded layouter.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if s, ok := decoded.Shape("a"); !ok || s.Bounds.X != 25 {
		t.Errorf("decoded shape = %+v", s)
	}

	buf.Reset()
	if err := WriteResult(&buf, result, FormatYAML); err != nil {
		t.Fatalf("WriteResult(yaml) error = %v", err)
	}
	if !strings.Contains(buf.String(), "element: a\n") {
		t.Errorf("yaml output lacks the shape element:\n%s", buf.String())
	}

	if err := WriteResult(&buf, result, "svg"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("WriteResult(svg) error = %v, want ErrUnsupportedFormat", err)
	}
}
