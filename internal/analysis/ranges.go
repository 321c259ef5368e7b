package analysis

import (
	"math"

	"github.com/san-kum/logimap/internal/dynamo"
)

// DefaultDepth is the iteration depth used when a RangeScan leaves Depth unset.
const DefaultDepth = 50

// SweepAxis selects which argument of the map a RangeScan varies.
type SweepAxis string

const (
	// SweepParameter varies a and seeds every iteration with the held x0.
	SweepParameter SweepAxis = "parameter"
	// SweepStart varies the starting value and holds a fixed.
	SweepStart SweepAxis = "start"
)

func (ax SweepAxis) Valid() bool {
	return ax == SweepParameter || ax == SweepStart
}

// RangeScan describes a half-open sweep [Start, End) sampled every Step.
// Held is the value of the argument that is not swept.
type RangeScan struct {
	Start float64
	End   float64
	Step  float64
	Held  float64
	Depth int
	Axis  SweepAxis
}

// Boundary is a sample at which finiteness of the depth-N iterate flipped.
// Finite reports the state entered at Value.
type Boundary struct {
	Value  float64 `json:"value"`
	Finite bool    `json:"finite"`
}

// Ranges is the result of a defined-range analysis.
//
// When AlwaysDefined is set the scan was short-circuited and the interval
// lists are empty. Otherwise Defined and Undefined alternate along the axis,
// Undefined starting at -Inf and ending at +Inf. An odd number of boundaries
// cannot be paired and leaves both lists empty.
type Ranges struct {
	AlwaysDefined bool              `json:"always_defined"`
	Boundaries    []Boundary        `json:"boundaries,omitempty"`
	Defined       []dynamo.Interval `json:"defined"`
	Undefined     []dynamo.Interval `json:"undefined"`
}

// Paired reports whether the boundaries could be paired into intervals.
func (r Ranges) Paired() bool {
	return !r.AlwaysDefined && len(r.Boundaries)%2 == 0
}

// DefinedAt reports whether v lies in a defined interval.
func (r Ranges) DefinedAt(v float64) bool {
	if r.AlwaysDefined {
		return true
	}
	for _, iv := range r.Defined {
		if iv.Contains(v) {
			return true
		}
	}
	return false
}

// AnalyzeDefinedRanges scans the axis and reports where the depth-N iterate
// stays finite.
//
// If |Held| < Step the held value is treated as zero and the map is
// trivially defined everywhere, so the scan returns AlwaysDefined without
// sampling.
func AnalyzeDefinedRanges(m dynamo.Map, scan RangeScan) Ranges {
	if math.Abs(scan.Held) < scan.Step {
		return Ranges{AlwaysDefined: true}
	}

	depth := scan.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}
	axis := scan.Axis
	if !axis.Valid() {
		axis = SweepStart
	}

	var boundaries []Boundary
	prevFinite := false // the implicit sample at -Inf is undefined

	if scan.Step > 0 {
		for i := 0; ; i++ {
			v := scan.Start + float64(i)*scan.Step
			if v >= scan.End {
				break
			}

			var result float64
			if axis == SweepParameter {
				result = dynamo.Iterate(m, scan.Held, v, depth)
			} else {
				result = dynamo.Iterate(m, v, scan.Held, depth)
			}

			finite := dynamo.IsFinite(result)
			if finite != prevFinite {
				boundaries = append(boundaries, Boundary{Value: v, Finite: finite})
				prevFinite = finite
			}
		}
	}

	return pairBoundaries(boundaries)
}

// pairBoundaries turns alternating boundaries into interval lists.
func pairBoundaries(boundaries []Boundary) Ranges {
	r := Ranges{Boundaries: boundaries}
	if len(boundaries)%2 != 0 {
		r.Defined = []dynamo.Interval{}
		r.Undefined = []dynamo.Interval{}
		return r
	}

	r.Defined = make([]dynamo.Interval, 0, len(boundaries)/2)
	for i := 0; i+1 < len(boundaries); i += 2 {
		r.Defined = append(r.Defined, dynamo.Interval{
			Lo: boundaries[i].Value,
			Hi: boundaries[i+1].Value,
		})
	}

	edges := make([]float64, 0, len(boundaries)+2)
	edges = append(edges, math.Inf(-1))
	for _, b := range boundaries {
		edges = append(edges, b.Value)
	}
	edges = append(edges, math.Inf(1))

	r.Undefined = make([]dynamo.Interval, 0, len(edges)/2)
	for i := 0; i+1 < len(edges); i += 2 {
		r.Undefined = append(r.Undefined, dynamo.Interval{Lo: edges[i], Hi: edges[i+1]})
	}

	return r
}
