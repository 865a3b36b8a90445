package resource

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Attributes is the opaque bag stored alongside a resource (price, metadata).
// The engine only ever reads a price out of it.
type Attributes map[string]any

func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// PriceCents reads a unit price stored under key. Imported data carries prices as
// numbers or as strings ("129.90", "$45"), so both are accepted; the value is in major
// units and converted to cents. ok is false when the key is absent.
func (a Attributes) PriceCents(key string) (cents int64, ok bool, err error) {
	raw, present := a[key]
	if !present || raw == nil {
		return 0, false, nil
	}

	var major float64
	switch v := raw.(type) {
	case float64:
		major = v
	case float32:
		major = float64(v)
	case int:
		major = float64(v)
	case int32:
		major = float64(v)
	case int64:
		major = float64(v)
	case json.Number:
		f, perr := v.Float64()
		if perr != nil {
			return 0, true, ErrInvalidPriceFormat
		}
		major = f
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "$"))
		s = strings.ReplaceAll(s, ",", "")
		f, perr := strconv.ParseFloat(s, 64)
		if perr != nil {
			return 0, true, ErrInvalidPriceFormat
		}
		major = f
	default:
		return 0, true, ErrInvalidPriceFormat
	}

	if major < 0 || math.IsNaN(major) || math.IsInf(major, 0) {
		return 0, true, ErrInvalidPriceFormat
	}
	return int64(math.Round(major * 100)), true, nil
}
