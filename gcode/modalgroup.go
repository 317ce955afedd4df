package gcode

// ModalGroup is the set of mutually exclusive commands a word belongs to.
// Only one word of a group may appear in a block.
type ModalGroup byte

const (
	ModalGroupNone ModalGroup = iota
	ModalGroupNonModal
	ModalGroupMotion
	ModalGroupPlaneSelection
	ModalGroupDistanceMode
	ModalGroupArcDistanceMode
	ModalGroupFeedRateMode
	ModalGroupUnits
	ModalGroupCoordinateSystem
	ModalGroupExtruderMode
	ModalGroupStopping
	ModalGroupFan
	ModalGroupFeedRate
)

type modalKey struct {
	w   byte
	arg float64
}

var modalGroups = map[modalKey]ModalGroup{}

func group(g ModalGroup, w byte, args ...float64) {
	for _, a := range args {
		modalGroups[modalKey{w, a}] = g
	}
}

func init() {
	group(ModalGroupNonModal, 'G', 4, 10, 11, 28, 29, 53, 92)
	group(ModalGroupMotion, 'G', 0, 1, 2, 3, 80)
	group(ModalGroupPlaneSelection, 'G', 17, 18, 19)
	group(ModalGroupDistanceMode, 'G', 90, 91)
	group(ModalGroupArcDistanceMode, 'G', 90.1, 91.1)
	group(ModalGroupFeedRateMode, 'G', 93, 94)
	group(ModalGroupUnits, 'G', 20, 21)
	group(ModalGroupCoordinateSystem, 'G', 54, 55, 56, 57, 58, 59)
	group(ModalGroupExtruderMode, 'M', 82, 83)
	group(ModalGroupStopping, 'M', 0, 1, 2, 30)
	group(ModalGroupFan, 'M', 106, 107)
}

func (w Word) ModalGroup() ModalGroup {
	if w.W == 'F' {
		return ModalGroupFeedRate
	}
	return modalGroups[modalKey{w.W, w.Arg}]
}
