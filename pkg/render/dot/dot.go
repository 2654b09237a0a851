package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// Options configures DOT generation.
type Options struct {
	// Process limits the output to one root process and its sub-processes.
	// Empty means every process plus the message flows between them.
	Process string

	// Detailed adds the kind to every node label.
	Detailed bool
}

// ToDOT converts the process graphs of defs to Graphviz DOT. Every process
// becomes a cluster; sub-processes nest inside their parent's cluster.
// It fails when Options.Process names no root process.
func ToDOT(defs *model.Definitions, opts Options) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [fontsize=12, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	found := false
	for _, p := range defs.Processes {
		if opts.Process != "" && p.ID != opts.Process {
			continue
		}
		found = true
		label := p.Name
		if part := defs.ParticipantFor(p); part != nil && part.Name != "" {
			label = part.Name
		}
		writeProcess(&buf, p, label, opts, 1)
	}
	if !found {
		return "", fmt.Errorf("unknown process %q", opts.Process)
	}

	if opts.Process == "" && defs.Collaboration != nil {
		buf.WriteString("\n")
		for _, e := range defs.Collaboration.MessageFlows {
			if e.Source.Kind == process.KindParticipant || e.Target.Kind == process.KindParticipant {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, arrowhead=empty, constraint=false];\n", e.Source.ID, e.Target.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func writeProcess(buf *bytes.Buffer, p *model.Process, label string, opts Options, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+p.ID)
	if label == "" {
		label = p.ID
	}
	fmt.Fprintf(buf, "%s  label=%q;\n", indent, label)
	fmt.Fprintf(buf, "%s  style=rounded;\n", indent)

	subs := make(map[*process.Node]*model.Process, len(p.SubProcesses))
	for _, sp := range p.SubProcesses {
		subs[sp.Node] = sp
	}

	for _, n := range p.Nodes {
		if sp, ok := subs[n]; ok && len(sp.Nodes) > 0 {
			writeProcess(buf, sp, nodeLabel(n, opts.Detailed), opts, depth+1)
			continue
		}
		fmt.Fprintf(buf, "%s  %q [%s];\n", indent, n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}
	for _, n := range p.Nodes {
		if n.AttachedTo != nil {
			fmt.Fprintf(buf, "%s  %q -> %q [style=dotted, arrowhead=none];\n", indent, n.AttachedTo.ID, n.ID)
		}
	}
	for _, e := range p.Flows {
		fmt.Fprintf(buf, "%s  %s;\n", indent, edgeStmt(e, subs))
	}
	for _, e := range p.Associations {
		fmt.Fprintf(buf, "%s  %s [style=dotted, arrowhead=vee];\n", indent, edgeStmt(e, subs))
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

// edgeStmt writes "src -> dst". Ends that are expanded clusters are
// replaced by their first node and clipped at the cluster border.
func edgeStmt(e *process.Edge, subs map[*process.Node]*model.Process) string {
	src, dst := e.Source.ID, e.Target.ID
	var attrs []string
	if sp, ok := subs[e.Source]; ok && len(sp.Nodes) > 0 {
		src = sp.Nodes[0].ID
		attrs = append(attrs, fmt.Sprintf("ltail=%q", "cluster_"+sp.ID))
	}
	if sp, ok := subs[e.Target]; ok && len(sp.Nodes) > 0 {
		dst = sp.Nodes[0].ID
		attrs = append(attrs, fmt.Sprintf("lhead=%q", "cluster_"+sp.ID))
	}
	stmt := fmt.Sprintf("%q -> %q", src, dst)
	if len(attrs) > 0 {
		stmt += " [" + strings.Join(attrs, ", ") + "]"
	}
	return stmt
}

func nodeLabel(n *process.Node, detailed bool) string {
	label := n.Name
	if label == "" {
		label = n.ID
	}
	if detailed {
		label += "\n" + string(n.Kind)
	}
	return label
}

func nodeAttrs(n *process.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, detailed))}
	switch {
	case n.Kind.IsEvent():
		attrs = append(attrs, "shape=circle", "fixedsize=false")
		if n.Kind == process.KindEndEvent {
			attrs = append(attrs, "penwidth=3")
		}
		if n.Kind != process.KindStartEvent && n.Kind != process.KindEndEvent {
			attrs = append(attrs, "peripheries=2")
		}
	case n.Kind.IsGateway():
		attrs = append(attrs, "shape=diamond")
	case n.Kind == process.KindDataObjectReference:
		attrs = append(attrs, "shape=note")
	case n.Kind == process.KindDataStoreReference:
		attrs = append(attrs, "shape=cylinder")
	default:
		attrs = append(attrs, "shape=box", "style=rounded")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one whose
// viewBox starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
