package gcode

import (
	"github.com/fieldOfView/ArcWelderLib/coord"
)

// Position is the logical position of the machine in millimeters. E is the
// cumulative extruder position and F the last feedrate as written.
type Position struct {
	X, Y, Z, E, F float64
}

func (p Position) Point() coord.Point { return coord.Point{X: p.X, Y: p.Y, Z: p.Z} }

// MotionState holds the distance modes for the axes and the extruder.
type MotionState struct {
	Relative         bool
	ExtruderRelative bool
}

// Move describes the motion performed by the last block run.
type Move struct {
	Motion   float64
	From, To Position
}

// Extrusion returns the extruder delta of the move.
func (m Move) Extrusion() float64 { return m.To.E - m.From.E }

// Travel reports whether the move changed position without extruding.
func (m Move) Travel() bool { return m.To.E == m.From.E }

// VM will track state and interpret gcode.
type VM struct {
	pos   Position
	state MotionState

	modal [256]float64

	// G90/G91 also switch the extruder mode
	G90InfluencesExtruder bool

	last  Move
	moved bool
}

// NewVM constructs a new VM with default state.
func NewVM() *VM {
	vm := &VM{}

	// using marlin defaults
	vm.modal[ModalGroupMotion] = 0
	vm.modal[ModalGroupPlaneSelection] = 17
	vm.modal[ModalGroupDistanceMode] = 90
	vm.modal[ModalGroupUnits] = 21
	vm.modal[ModalGroupExtruderMode] = 82

	return vm
}

func (vm *VM) Inches() bool { return vm.modal[ModalGroupUnits] == 20 }

// Scale is the number of millimeters per input unit.
func (vm *VM) Scale() float64 {
	if vm.Inches() {
		return 25.4
	}
	return 1
}

func (vm *VM) Plane() coord.Plane {
	p, _ := coord.PlaneFromG(vm.modal[ModalGroupPlaneSelection])
	return p
}

func (vm *VM) Position() Position     { return vm.pos }
func (vm *VM) SetPosition(p Position) { vm.pos = p }
func (vm *VM) State() MotionState     { return vm.state }
func (vm *VM) SetState(s MotionState) { vm.state = s }
func (vm *VM) LastMove() (Move, bool) { return vm.last, vm.moved }

func (vm *VM) axis(p *Position, w Word, relative bool) {
	v := w.Arg * vm.Scale()
	var f *float64
	switch w.W {
	case 'X':
		f = &p.X
	case 'Y':
		f = &p.Y
	case 'Z':
		f = &p.Z
	case 'E':
		f = &p.E
	default:
		return
	}
	if relative {
		*f += v
	} else {
		*f = v
	}
}

// Run applies a block to the VM state. Blocks that fail validation leave
// the state untouched. Commands the VM does not know are ignored.
func (vm *VM) Run(b Block) error {
	vm.moved = false
	if len(b) == 0 {
		return nil
	}
	err := b.Validate()
	if err != nil {
		return err
	}

	var setPos, home, motion bool
	for _, g := range b {
		mg := g.ModalGroup()
		switch {
		case g.Is('G', 92):
			setPos = true
		case g.Is('G', 28):
			home = true
		case mg == ModalGroupMotion:
			motion = true
		}
		if mg != ModalGroupNone && mg != ModalGroupNonModal {
			vm.modal[mg] = g.Arg
		}

		switch {
		case g.Is('G', 90):
			vm.state.Relative = false
			if vm.G90InfluencesExtruder {
				vm.state.ExtruderRelative = false
			}
		case g.Is('G', 91):
			vm.state.Relative = true
			if vm.G90InfluencesExtruder {
				vm.state.ExtruderRelative = true
			}
		case g.Is('M', 82):
			vm.state.ExtruderRelative = false
		case g.Is('M', 83):
			vm.state.ExtruderRelative = true
		}
	}

	switch {
	case setPos:
		vm.setPosition(b)
		return nil
	case home:
		vm.home(b)
		return nil
	}

	if _, cmd := b.Command(); cmd && !motion {
		// axis words of non-motion commands (M206 X..) are not moves
		return nil
	}
	hasAxis := false
	for _, g := range b {
		if g.IsAxis() {
			hasAxis = true
		}
		if g.W == 'F' {
			vm.pos.F = g.Arg
		}
	}
	if !hasAxis {
		return nil
	}
	switch vm.modal[ModalGroupMotion] {
	case 0, 1, 2, 3:
	default:
		return nil
	}

	from := vm.pos
	for _, g := range b {
		if g.Digits < 0 {
			continue
		}
		if g.W == 'E' {
			vm.axis(&vm.pos, g, vm.state.ExtruderRelative)
		} else {
			vm.axis(&vm.pos, g, vm.state.Relative)
		}
	}
	vm.last = Move{Motion: vm.modal[ModalGroupMotion], From: from, To: vm.pos}
	vm.moved = true
	return nil
}

func (vm *VM) setPosition(b Block) {
	found := false
	for _, g := range b {
		if g.IsAxis() {
			found = true
			if g.Digits < 0 {
				g.Arg = 0
			}
			vm.axis(&vm.pos, g, false)
		}
	}
	if !found {
		vm.pos.X, vm.pos.Y, vm.pos.Z, vm.pos.E = 0, 0, 0, 0
	}
}

func (vm *VM) home(b Block) {
	found := false
	for _, g := range b {
		switch g.W {
		case 'X':
			vm.pos.X = 0
		case 'Y':
			vm.pos.Y = 0
		case 'Z':
			vm.pos.Z = 0
		default:
			continue
		}
		found = true
	}
	if !found {
		vm.pos.X, vm.pos.Y, vm.pos.Z = 0, 0, 0
	}
}
