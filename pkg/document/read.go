package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/errors"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"
)

// Read decodes a document from r and returns its validated definitions.
// An empty format sniffs the content.
//
// Read fails with INVALID_FORMAT for undecodable input or unknown fields,
// with INVALID_INPUT for bad IDs, dangling references and every rule of
// [model.Definitions.Validate], and with [ErrUnsupportedFormat] for an
// unknown format. Read does not close r.
func Read(r io.Reader, format Format) (*model.Definitions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read document")
	}
	return Decode(data, format)
}

// ReadFile reads the document at path. The format follows the file
// extension, falling back to sniffing. A missing file fails with
// FILE_NOT_FOUND.
func ReadFile(path string) (*model.Definitions, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defs, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// Decode is [Read] over an in-memory document.
func Decode(data []byte, format Format) (*model.Definitions, error) {
	if format == "" {
		format = Sniff(data)
	}

	var doc wireDocument
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	defs, err := newBuilder().build(&doc)
	if err != nil {
		return nil, err
	}
	if err := defs.Validate(); err != nil {
		return nil, err
	}
	return defs, nil
}

// =============================================================================
// Building definitions
// =============================================================================

// builder resolves the string references of a wire document in two passes:
// first every node is created, then flows, attachments, lanes and message
// flows are wired by ID.
type builder struct {
	nodes map[string]*process.Node
}

func newBuilder() *builder {
	return &builder{nodes: make(map[string]*process.Node)}
}

// pending is a process whose edges still need resolving.
type pending struct {
	p            *model.Process
	nodes        []wireNode
	flows        []wireEdge
	associations []wireEdge
}

func (b *builder) build(doc *wireDocument) (*model.Definitions, error) {
	defs := &model.Definitions{ID: doc.ID}
	byID := make(map[string]*model.Process, len(doc.Processes))

	var todo []pending
	for _, wp := range doc.Processes {
		if err := errors.ValidateID(wp.ID); err != nil {
			return nil, err
		}
		p := model.NewProcess(wp.ID, wp.Name)
		defs.Processes = append(defs.Processes, p)
		byID[wp.ID] = p

		more, err := b.addNodes(p, wp.Nodes)
		if err != nil {
			return nil, err
		}
		todo = append(todo, pending{p, wp.Nodes, wp.Flows, wp.Associations})
		todo = append(todo, more...)
	}

	for _, t := range todo {
		if err := b.wire(t); err != nil {
			return nil, err
		}
	}
	for _, wp := range doc.Processes {
		p := byID[wp.ID]
		for _, wl := range wp.Lanes {
			l, err := b.lane(wl)
			if err != nil {
				return nil, err
			}
			p.AddLane(l)
		}
	}

	if wc := doc.Collaboration; wc != nil {
		c, err := b.collaboration(wc, byID)
		if err != nil {
			return nil, err
		}
		defs.Collaboration = c
	}
	return defs, nil
}

// addNodes creates the nodes of p and, depth first, of its sub-processes.
// It returns the sub-processes still to be wired.
func (b *builder) addNodes(p *model.Process, nodes []wireNode) ([]pending, error) {
	var todo []pending
	for _, wn := range nodes {
		if err := errors.ValidateID(wn.ID); err != nil {
			return nil, err
		}
		if _, dup := b.nodes[wn.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate id %q", wn.ID)
		}
		n := &process.Node{
			ID:       wn.ID,
			Name:     wn.Name,
			Kind:     process.Kind(wn.Kind),
			Expanded: wn.Expanded,
			Width:    wn.Width,
			Height:   wn.Height,
		}
		b.nodes[wn.ID] = n

		if n.Kind != process.KindSubProcess {
			if len(wn.Nodes) > 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "%s %q cannot hold nodes", wn.Kind, wn.ID)
			}
			p.AddNode(n)
			continue
		}
		sp := p.AddSubProcess(n)
		more, err := b.addNodes(sp, wn.Nodes)
		if err != nil {
			return nil, err
		}
		todo = append(todo, pending{sp, wn.Nodes, wn.Flows, wn.Associations})
		todo = append(todo, more...)
	}
	return todo, nil
}

func (b *builder) wire(t pending) error {
	for _, wn := range t.nodes {
		if wn.AttachedTo == "" {
			continue
		}
		host, err := b.ref(wn.AttachedTo, "attachedTo of "+wn.ID)
		if err != nil {
			return err
		}
		process.Attach(b.nodes[wn.ID], host)
	}
	for _, we := range t.flows {
		src, dst, err := b.ends(we)
		if err != nil {
			return err
		}
		t.p.Connect(we.ID, src, dst)
	}
	for _, we := range t.associations {
		src, dst, err := b.ends(we)
		if err != nil {
			return err
		}
		t.p.Associate(we.ID, src, dst)
	}
	return nil
}

func (b *builder) ref(id, what string) (*process.Node, error) {
	n, ok := b.nodes[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s references unknown node %q", what, id)
	}
	return n, nil
}

func (b *builder) ends(we wireEdge) (*process.Node, *process.Node, error) {
	if err := errors.ValidateID(we.ID); err != nil {
		return nil, nil, err
	}
	src, err := b.ref(we.Source, "source of "+we.ID)
	if err != nil {
		return nil, nil, err
	}
	dst, err := b.ref(we.Target, "target of "+we.ID)
	if err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

func (b *builder) lane(wl wireLane) (*model.Lane, error) {
	if err := errors.ValidateID(wl.ID); err != nil {
		return nil, err
	}
	nodes := make([]*process.Node, 0, len(wl.Nodes))
	for _, id := range wl.Nodes {
		n, err := b.ref(id, "lane "+wl.ID)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	l := model.NewLane(wl.ID, wl.Name, nodes...)
	for _, child := range wl.Lanes {
		c, err := b.lane(child)
		if err != nil {
			return nil, err
		}
		l.Add(c)
	}
	return l, nil
}

func (b *builder) collaboration(wc *wireCollaboration, byID map[string]*model.Process) (*model.Collaboration, error) {
	if err := errors.ValidateID(wc.ID); err != nil {
		return nil, err
	}
	c := &model.Collaboration{ID: wc.ID}
	pools := make(map[string]*process.Node)
	for _, wpart := range wc.Participants {
		if err := errors.ValidateID(wpart.ID); err != nil {
			return nil, err
		}
		p, ok := byID[wpart.Process]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"participant %q references unknown process %q", wpart.ID, wpart.Process)
		}
		part := model.NewParticipant(wpart.ID, wpart.Name, p)
		c.Participants = append(c.Participants, part)
		pools[part.ID] = part.Node
	}

	end := func(id, what string) (*process.Node, error) {
		if n, ok := pools[id]; ok {
			return n, nil
		}
		return b.ref(id, what)
	}
	for _, we := range wc.MessageFlows {
		if err := errors.ValidateID(we.ID); err != nil {
			return nil, err
		}
		src, err := end(we.Source, "source of "+we.ID)
		if err != nil {
			return nil, err
		}
		dst, err := end(we.Target, "target of "+we.ID)
		if err != nil {
			return nil, err
		}
		c.MessageFlows = append(c.MessageFlows, &process.Edge{ID: we.ID, Source: src, Target: dst, Kind: process.EdgeMessageFlow})
	}
	return c, nil
}
