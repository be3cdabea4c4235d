package completion

import "fmt"

// SamplingKind says which sampling knob a request sets.
type SamplingKind int

const (
	SamplingTopP SamplingKind = iota
	SamplingTemperature
)

// Sampling carries exactly one of top-p or temperature.
type Sampling struct {
	Kind  SamplingKind
	Value float64
}

func TopP(v float64) Sampling        { return Sampling{Kind: SamplingTopP, Value: v} }
func Temperature(v float64) Sampling { return Sampling{Kind: SamplingTemperature, Value: v} }

// SamplingFor uses the temperature when one was set, zero included, and
// otherwise top-p.
func SamplingFor(temperature *float64, topP float64) Sampling {
	if temperature != nil {
		return Temperature(*temperature)
	}
	return TopP(topP)
}

func (s Sampling) String() string {
	if s.Kind == SamplingTemperature {
		return fmt.Sprintf("temperature=%g", s.Value)
	}
	return fmt.Sprintf("top_p=%g", s.Value)
}
