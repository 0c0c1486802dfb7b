// Package units converts between the millimetre space used by card layouts
// and the PostScript point space used by PDF and IDML output.
package units

import "strconv"

const (
	// PointsPerMM is the factor applied when going from millimetres to points.
	PointsPerMM = 2.83465
	// MMPerPoint is the factor applied when going from points to millimetres.
	// It is not the exact reciprocal of PointsPerMM; round trips agree to
	// well within 0.01.
	MMPerPoint = 0.352778

	// Standard Japanese business card size.
	CardWidthMM  = 91.0
	CardHeightMM = 55.0
)

// MMToPt converts millimetres to points.
func MMToPt(mm float64) float64 {
	return mm * PointsPerMM
}

// PtToMM converts points to millimetres.
func PtToMM(pt float64) float64 {
	return pt * MMPerPoint
}

// Format renders a coordinate with two decimals, the precision used in
// generated PDF and IDML documents.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatCompact renders a value without trailing zeros (e.g. font sizes).
func FormatCompact(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
