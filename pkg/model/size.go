package model

import "github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/process"

// DefaultSize returns the drawn width and height of an unexpanded element of
// the given kind.
func DefaultSize(kind process.Kind) (width, height float64) {
	switch {
	case kind == process.KindParticipant:
		return 600, 250
	case kind == process.KindDataObjectReference:
		return 36, 50
	case kind == process.KindDataStoreReference:
		return 50, 50
	case kind.IsEvent():
		return 36, 36
	case kind.IsGateway():
		return 50, 50
	default:
		return 100, 80
	}
}
