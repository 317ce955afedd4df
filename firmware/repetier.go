package firmware

var repetier = variant{
	versions: []Arguments{
		{
			Type:                  Repetier,
			Version:               "0.92.10",
			MMPerArcSegment:       1,
			NArcCorrection:        25,
			G90InfluencesExtruder: true,
			Used:                  []string{ArgMMPerArcSegment, ArgNArcCorrection, ArgG90InfluencesExtruder},
		},
		{
			Type:                  Repetier,
			Version:               "1.0.4",
			MMPerArcSegment:       1,
			NArcCorrection:        25,
			G90InfluencesExtruder: true,
			Used:                  []string{ArgMMPerArcSegment, ArgNArcCorrection, ArgG90InfluencesExtruder},
		},
	},
	approx: firstOrder,
}
