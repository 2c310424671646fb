package valueobject

import "fmt"

// Fixed band breakpoints on the 0-1000 final score scale. They are not
// configurable per call.
const (
	ModerateBandFloor   = 350
	ModerateBandCeiling = 700
)

// RiskBand is an immutable value object for the band assigned to a final score.
type RiskBand struct {
	value string
}

var (
	RiskBandLow      = RiskBand{value: "Low"}
	RiskBandModerate = RiskBand{value: "Moderate"}
	RiskBandHigh     = RiskBand{value: "High"}
)

// RiskBandFromString reconstructs a RiskBand from its string representation.
func RiskBandFromString(s string) (RiskBand, error) {
	switch s {
	case "Low":
		return RiskBandLow, nil
	case "Moderate":
		return RiskBandModerate, nil
	case "High":
		return RiskBandHigh, nil
	default:
		return RiskBand{}, fmt.Errorf("invalid risk band: %s", s)
	}
}

// RiskBandFromScore derives the band from a final score (0-1000).
// score < 350 is Low, 350..700 is Moderate, > 700 is High.
func RiskBandFromScore(score int) RiskBand {
	switch {
	case score < ModerateBandFloor:
		return RiskBandLow
	case score <= ModerateBandCeiling:
		return RiskBandModerate
	default:
		return RiskBandHigh
	}
}

// String returns the string representation.
func (b RiskBand) String() string {
	return b.value
}

// IsZero returns true if the RiskBand has not been set.
func (b RiskBand) IsZero() bool {
	return b.value == ""
}

// Equal checks equality with another RiskBand.
func (b RiskBand) Equal(other RiskBand) bool {
	return b.value == other.value
}

// MarshalText implements encoding.TextMarshaler.
func (b RiskBand) MarshalText() ([]byte, error) {
	return []byte(b.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *RiskBand) UnmarshalText(text []byte) error {
	parsed, err := RiskBandFromString(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
