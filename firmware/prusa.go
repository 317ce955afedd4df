package firmware

var prusa = variant{
	versions: []Arguments{
		{
			Type:                  Prusa,
			Version:               "3.9.3",
			MMPerArcSegment:       1,
			NArcCorrection:        25,
			G90InfluencesExtruder: true,
			Used:                  []string{ArgMMPerArcSegment, ArgNArcCorrection, ArgG90InfluencesExtruder},
		},
		prusa310("3.10.0"),
		prusa310("3.11.0"),
	},
	approx: thirdOrder,
}

// prusa310 is the arc planner introduced with 3.10.
func prusa310(version string) Arguments {
	return Arguments{
		Type:                  Prusa,
		Version:               version,
		MMPerArcSegment:       1,
		MinMMPerArcSegment:    0.5,
		MinArcSegments:        24,
		NArcCorrection:        25,
		G90InfluencesExtruder: true,
		Used: []string{
			ArgMMPerArcSegment,
			ArgMinMMPerArcSegment,
			ArgMinArcSegments,
			ArgArcSegmentsPerSec,
			ArgNArcCorrection,
			ArgG90InfluencesExtruder,
		},
	}
}
