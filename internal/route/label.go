package route

import (
	"fmt"
	"math"

	"heliroute/internal/geo"
)

// LegLabel is the text drawn alongside a leg on the map.
type LegLabel struct {
	Text                string  `json:"text" msgpack:"text"`
	TextRotationDegrees float64 `json:"text_rotation_deg" msgpack:"text_rotation_deg"`
}

// FormatLeg renders "<nm> nm • <min>m" with a trailing * for wind-adjusted
// time and an arrow showing east- or westbound travel. The rotation runs
// the text along the leg and keeps it upright.
func FormatLeg(leg Leg) LegLabel {
	wind := ""
	if leg.TimeIsWindAdjusted {
		wind = "*"
	}
	minutes := int(math.Round(leg.TimeHours * 60))
	text := fmt.Sprintf("%.1f nm • %dm%s", leg.DistanceNm, minutes, wind)

	if leg.To.Lon < leg.From.Lon {
		text = "← " + text
	} else {
		text = text + " →"
	}

	return LegLabel{
		Text:                text,
		TextRotationDegrees: labelRotation(leg.BearingDegrees),
	}
}

func labelRotation(bearing float64) float64 {
	r := geo.NormalizeHeading(bearing + 90)
	if r > 90 && r < 270 {
		r = geo.NormalizeHeading(r + 180)
	}
	return r
}

// FormatLegs labels every leg in order.
func FormatLegs(legs []Leg) []LegLabel {
	labels := make([]LegLabel, len(legs))
	for i, leg := range legs {
		labels[i] = FormatLeg(leg)
	}
	return labels
}
