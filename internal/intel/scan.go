package intel

import "fmt"

// ScanLevel is the quality of an observation. Levels are totally ordered.
type ScanLevel int

const (
	None ScanLevel = iota
	InScan
	InPlace
	InDeepScan
	Owned
)

func (s ScanLevel) String() string {
	switch s {
	case None:
		return "None"
	case InScan:
		return "InScan"
	case InPlace:
		return "InPlace"
	case InDeepScan:
		return "InDeepScan"
	case Owned:
		return "Owned"
	}
	return fmt.Sprintf("ScanLevel(%d)", int(s))
}

// FieldGroup is a set of StarIntel fields disclosed together.
type FieldGroup int

const (
	// Identity is name and position.
	Identity FieldGroup = iota
	// Surface is owner, minerals, environment, starbase and orbiting fleets.
	Surface
	// Population is the colonist count.
	Population
)

// Visible reports whether an observation at scan discloses group.
// Owned discloses nothing beyond InDeepScan; owned stars are tracked in full
// elsewhere.
func Visible(scan ScanLevel, group FieldGroup) bool {
	switch group {
	case Identity:
		return true
	case Surface:
		return scan >= InPlace
	case Population:
		return scan >= InDeepScan
	}
	return false
}
