package dynamo

import (
	"encoding/json"
	"math"
	"strconv"
)

// Series is an ordered sequence of iterates, index = iteration step.
type Series []float64

// encoding/json rejects NaN and ±Inf, so non-finite values are written as the
// strings "NaN", "+Inf" and "-Inf" and read back the same way.
func appendFloat(buf []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(buf, `"NaN"`...)
	case math.IsInf(v, 1):
		return append(buf, `"+Inf"`...)
	case math.IsInf(v, -1):
		return append(buf, `"-Inf"`...)
	}
	return strconv.AppendFloat(buf, v, 'g', -1, 64)
}

func parseFloat(raw json.RawMessage) (float64, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "+Inf", "Inf":
			return math.Inf(1), nil
		case "-Inf":
			return math.Inf(-1), nil
		}
		return strconv.ParseFloat(s, 64)
	}
	var v float64
	err := json.Unmarshal(raw, &v)
	return v, err
}

func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, len(s)*8+2)
	buf = append(buf, '[')
	for i, v := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendFloat(buf, v)
	}
	return append(buf, ']'), nil
}

func (s *Series) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	out := make(Series, len(raw))
	for i, r := range raw {
		v, err := parseFloat(r)
		if err != nil {
			return err
		}
		out[i] = v
	}
	*s = out
	return nil
}

func (p Point) MarshalJSON() ([]byte, error) {
	buf := []byte(`{"x":`)
	buf = appendFloat(buf, p.X)
	buf = append(buf, `,"y":`...)
	buf = appendFloat(buf, p.Y)
	return append(buf, '}'), nil
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var raw struct {
		X json.RawMessage `json:"x"`
		Y json.RawMessage `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	if p.X, err = parseFloat(raw.X); err != nil {
		return err
	}
	p.Y, err = parseFloat(raw.Y)
	return err
}

func (iv Interval) MarshalJSON() ([]byte, error) {
	buf := []byte(`{"lo":`)
	buf = appendFloat(buf, iv.Lo)
	buf = append(buf, `,"hi":`...)
	buf = appendFloat(buf, iv.Hi)
	return append(buf, '}'), nil
}

func (iv *Interval) UnmarshalJSON(data []byte) error {
	var raw struct {
		Lo json.RawMessage `json:"lo"`
		Hi json.RawMessage `json:"hi"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	if iv.Lo, err = parseFloat(raw.Lo); err != nil {
		return err
	}
	iv.Hi, err = parseFloat(raw.Hi)
	return err
}
