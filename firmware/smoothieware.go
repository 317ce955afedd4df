package firmware

// Smoothieware sizes segments by chordal error by default; a fixed
// segment length is only used when mm_per_arc_segment is set.
var smoothieware = variant{
	versions: []Arguments{
		{
			Type:                  Smoothieware,
			Version:               "2016-12-01",
			MMMaxArcError:         0.01,
			NArcCorrection:        5,
			G90InfluencesExtruder: true,
			Used: []string{
				ArgMMPerArcSegment,
				ArgMMMaxArcError,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
			},
		},
		{
			Type:                  Smoothieware,
			Version:               "2021-06-19",
			MMMaxArcError:         0.01,
			NArcCorrection:        5,
			G90InfluencesExtruder: true,
			Used: []string{
				ArgMMPerArcSegment,
				ArgMMMaxArcError,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
			},
		},
	},
	approx: firstOrder,
}
