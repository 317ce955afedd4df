package weld

// RejectReason tells why a segment could not be added to an arc.
type RejectReason int

const (
	ReasonNone RejectReason = iota
	ReasonNoFit
	ReasonDeviation
	ReasonRadius
	ReasonFirmwareCompensation
	ReasonPlane
	ReasonHelical
	ReasonDirection
	ReasonSweep
	ReasonMotionKind
	ReasonFeedrate
	ReasonExtrusionRate
	ReasonGcodeLength
	ReasonClosingCheck
)

var reasonNames = [...]string{
	ReasonNone:                 "none",
	ReasonNoFit:                "no_fit",
	ReasonDeviation:            "deviation",
	ReasonRadius:               "radius",
	ReasonFirmwareCompensation: "firmware_compensation",
	ReasonPlane:                "plane",
	ReasonHelical:              "helical",
	ReasonDirection:            "direction",
	ReasonSweep:                "sweep",
	ReasonMotionKind:           "motion_kind",
	ReasonFeedrate:             "feedrate",
	ReasonExtrusionRate:        "extrusion_rate",
	ReasonGcodeLength:          "gcode_length",
	ReasonClosingCheck:         "closing_check",
}

func (r RejectReason) String() string {
	if r >= 0 && int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}
