package cache

// LayoutKeyOpts are the layout options that change a layout result.
type LayoutKeyOpts struct {
	CellWidth      float64 `json:"cell_width"`
	CellHeight     float64 `json:"cell_height"`
	PoolMargin     float64 `json:"pool_margin"`
	LaneLabelWidth float64 `json:"lane_label_width"`
	MaxSteps       int     `json:"max_steps"`
	Grids          bool    `json:"grids"`
}

// ArtifactKeyOpts identify one rendering of a layout.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// Keyer derives cache keys. Keys from different methods never collide.
type Keyer interface {
	// LayoutKey keys the layout of the document with the given hash.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the inputs of every key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return keyFor("layout", docHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return keyFor("artifact", layoutHash, opts)
}
