package document

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/layouter"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// WriteResult encodes a layout result as indented JSON or YAML.
func WriteResult(w io.Writer, result *layouter.Result, format Format) error {
	return encode(w, result, format)
}

// WriteDefinitions encodes defs in the document format. Reading the output
// back yields equivalent definitions.
func WriteDefinitions(w io.Writer, defs *model.Definitions, format Format) error {
	return encode(w, toWire(defs), format)
}

// Canonical returns the compact JSON form of defs. Equal documents produce
// equal bytes regardless of the format they were read from, which makes the
// output suitable as a cache key input.
func Canonical(defs *model.Definitions) ([]byte, error) {
	data, err := json.Marshal(toWire(defs))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

func encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// =============================================================================
// Definitions to wire
// =============================================================================

func toWire(defs *model.Definitions) wireDocument {
	doc := wireDocument{ID: defs.ID, Processes: make([]wireProcess, 0, len(defs.Processes))}
	for _, p := range defs.Processes {
		wp := wireProcess{ID: p.ID, Name: p.Name}
		wp.Nodes, wp.Flows, wp.Associations = contentToWire(p)
		for _, l := range p.Lanes {
			wp.Lanes = append(wp.Lanes, laneToWire(p, l))
		}
		doc.Processes = append(doc.Processes, wp)
	}

	if c := defs.Collaboration; c != nil {
		wc := &wireCollaboration{ID: c.ID}
		for _, part := range c.Participants {
			wpart := wireParticipant{ID: part.ID, Name: part.Name}
			if part.Process != nil {
				wpart.Process = part.Process.ID
			}
			wc.Participants = append(wc.Participants, wpart)
		}
		wc.MessageFlows = edgesToWire(c.MessageFlows)
		doc.Collaboration = wc
	}
	return doc
}

func contentToWire(p *model.Process) ([]wireNode, []wireEdge, []wireEdge) {
	subs := make(map[*process.Node]*model.Process, len(p.SubProcesses))
	for _, sp := range p.SubProcesses {
		subs[sp.Node] = sp
	}

	nodes := make([]wireNode, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		wn := wireNode{
			ID:       n.ID,
			Kind:     string(n.Kind),
			Name:     n.Name,
			Expanded: n.Expanded,
		}
		if n.AttachedTo != nil {
			wn.AttachedTo = n.AttachedTo.ID
		}
		if w, h := model.DefaultSize(n.Kind); n.Width != w || n.Height != h {
			wn.Width, wn.Height = n.Width, n.Height
		}
		if sp, ok := subs[n]; ok {
			wn.Nodes, wn.Flows, wn.Associations = contentToWire(sp)
		}
		nodes = append(nodes, wn)
	}
	return nodes, edgesToWire(p.Flows), edgesToWire(p.Associations)
}

func laneToWire(p *model.Process, l *model.Lane) wireLane {
	wl := wireLane{ID: l.ID(), Name: l.Node.Name}
	for _, n := range p.Nodes {
		if n.Lane == l.Node {
			wl.Nodes = append(wl.Nodes, n.ID)
		}
	}
	for _, child := range l.Lanes {
		wl.Lanes = append(wl.Lanes, laneToWire(p, child))
	}
	return wl
}

func edgesToWire(edges []*process.Edge) []wireEdge {
	if len(edges) == 0 {
		return nil
	}
	out := make([]wireEdge, len(edges))
	for i, e := range edges {
		out[i] = wireEdge{ID: e.ID, Source: e.Source.ID, Target: e.Target.ID}
	}
	return out
}
