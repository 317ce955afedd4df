package firmware

var marlin1 = variant{
	versions: []Arguments{
		{
			Type:            Marlin1,
			Version:         "1.0.0",
			MMPerArcSegment: 1,
			NArcCorrection:  25,
			Used:            []string{ArgMMPerArcSegment, ArgNArcCorrection, ArgG90InfluencesExtruder},
		},
		{
			Type:            Marlin1,
			Version:         "1.1.9.1",
			MMPerArcSegment: 1,
			NArcCorrection:  25,
			Used:            []string{ArgMMPerArcSegment, ArgNArcCorrection, ArgG90InfluencesExtruder},
		},
	},
	approx: firstOrder,
}
