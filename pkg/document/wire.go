package document

// Wire types of the document format. Every field carries both tags so the
// same structs decode YAML and JSON.

type wireDocument struct {
	ID            string             `json:"id" yaml:"id"`
	Collaboration *wireCollaboration `json:"collaboration,omitempty" yaml:"collaboration,omitempty"`
	Processes     []wireProcess      `json:"processes" yaml:"processes"`
}

type wireCollaboration struct {
	ID           string            `json:"id" yaml:"id"`
	Participants []wireParticipant `json:"participants" yaml:"participants"`
	MessageFlows []wireEdge        `json:"messageFlows,omitempty" yaml:"messageFlows,omitempty"`
}

type wireParticipant struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Process string `json:"process" yaml:"process"`
}

type wireProcess struct {
	ID           string     `json:"id" yaml:"id"`
	Name         string     `json:"name,omitempty" yaml:"name,omitempty"`
	Lanes        []wireLane `json:"lanes,omitempty" yaml:"lanes,omitempty"`
	Nodes        []wireNode `json:"nodes" yaml:"nodes"`
	Flows        []wireEdge `json:"flows,omitempty" yaml:"flows,omitempty"`
	Associations []wireEdge `json:"associations,omitempty" yaml:"associations,omitempty"`
}

type wireLane struct {
	ID    string     `json:"id" yaml:"id"`
	Name  string     `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes []string   `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Lanes []wireLane `json:"lanes,omitempty" yaml:"lanes,omitempty"`
}

type wireNode struct {
	ID         string  `json:"id" yaml:"id"`
	Kind       string  `json:"kind" yaml:"kind"`
	Name       string  `json:"name,omitempty" yaml:"name,omitempty"`
	Expanded   bool    `json:"expanded,omitempty" yaml:"expanded,omitempty"`
	AttachedTo string  `json:"attachedTo,omitempty" yaml:"attachedTo,omitempty"`
	Width      float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height     float64 `json:"height,omitempty" yaml:"height,omitempty"`

	// sub-process content
	Nodes        []wireNode `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Flows        []wireEdge `json:"flows,omitempty" yaml:"flows,omitempty"`
	Associations []wireEdge `json:"associations,omitempty" yaml:"associations,omitempty"`
}

type wireEdge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}
