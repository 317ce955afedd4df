package firmware

var marlin2 = variant{
	versions: []Arguments{
		{
			Type:            Marlin2,
			Version:         "2.0.0",
			MMPerArcSegment: 1,
			MinArcSegments:  24,
			NArcCorrection:  25,
			Used: []string{
				ArgMMPerArcSegment,
				ArgArcSegmentsPerR,
				ArgMinArcSegments,
				ArgArcSegmentsPerSec,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
			},
		},
		{
			// 2.0.9 renamed the segment settings and raised the circle minimum
			Type:               Marlin2,
			Version:            "2.0.9.1",
			MMPerArcSegment:    1,
			MinMMPerArcSegment: 0.1,
			MinArcSegments:     72,
			NArcCorrection:     25,
			Used: []string{
				ArgMaxArcSegmentMM,
				ArgMinArcSegmentMM,
				ArgMinCircleSegments,
				ArgArcSegmentsPerSec,
				ArgNArcCorrection,
				ArgG90InfluencesExtruder,
			},
		},
	},
	approx: thirdOrder,
}
