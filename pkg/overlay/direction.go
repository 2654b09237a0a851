package overlay

import "github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/grid"

// Direction is the compass classification of an edge, from its source cell
// to its target cell.
type Direction int

const (
	// NoDirection means source and target share a cell.
	NoDirection Direction = iota
	// SN runs south to north: same column, target above.
	SN
	// SWNE runs south-west to north-east.
	SWNE
	// WE runs west to east: same row, target to the right.
	WE
	// NWSE runs north-west to south-east.
	NWSE
	// NS runs north to south: same column, target below.
	NS
	// NESW runs north-east to south-west.
	NESW
	// EW runs east to west: same row, target to the left.
	EW
	// SENW runs south-east to north-west.
	SENW
)

var directionNames = [...]string{
	NoDirection: "NO_DIRECTION",
	SN:          "S_N",
	SWNE:        "SW_NE",
	WE:          "W_E",
	NWSE:        "NW_SE",
	NS:          "N_S",
	NESW:        "NE_SW",
	EW:          "E_W",
	SENW:        "SE_NW",
}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "UNKNOWN"
	}
	return directionNames[d]
}

// Opposite returns the direction of the reversed edge.
func (d Direction) Opposite() Direction {
	switch d {
	case SN:
		return NS
	case NS:
		return SN
	case SWNE:
		return NESW
	case NESW:
		return SWNE
	case WE:
		return EW
	case EW:
		return WE
	case NWSE:
		return SENW
	case SENW:
		return NWSE
	}
	return NoDirection
}

// IsHorizontal reports whether d runs along a row.
func (d Direction) IsHorizontal() bool { return d == WE || d == EW }

// IsVertical reports whether d runs along a column.
func (d Direction) IsVertical() bool { return d == SN || d == NS }

// Classify returns the direction from src to tgt.
func Classify(src, tgt grid.Position) Direction {
	v := src.Row - tgt.Row
	h := src.Col - tgt.Col
	switch {
	case v == 0 && h == 0:
		return NoDirection
	case v > 0 && h == 0:
		return SN
	case v > 0 && h < 0:
		return SWNE
	case v == 0 && h < 0:
		return WE
	case v < 0 && h < 0:
		return NWSE
	case v < 0 && h == 0:
		return NS
	case v < 0 && h > 0:
		return NESW
	case v == 0 && h > 0:
		return EW
	default:
		return SENW
	}
}
