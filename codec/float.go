package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	quietNaN32 = 0x7fc00000
	quietNaN64 = 0x7ff8000000000000
)

// FormatFloat formats the IEEE 754 bits of a float of the given width (4
// or 8) as the shortest decimal that ParseFloat maps back to the same bits.
// NaNs keep their payload as NaN(0x<bits>).
func FormatFloat(bits uint64, width int) string {
	if width == 4 {
		f := math.Float32frombits(uint32(bits))
		if f != f {
			return fmt.Sprintf("NaN(0x%08x)", uint32(bits))
		}
		return strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	f := math.Float64frombits(bits)
	if math.IsNaN(f) {
		return fmt.Sprintf("NaN(0x%016x)", bits)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseFloat is the inverse of FormatFloat. A bare "NaN" gives the quiet
// NaN.
func ParseFloat(s string, width int) (uint64, error) {
	if width != 4 && width != 8 {
		return 0, fmt.Errorf("%w: float width %d", ErrUnsupportedType, width)
	}
	if rest, ok := strings.CutPrefix(s, "NaN("); ok {
		hex, ok := strings.CutSuffix(rest, ")")
		if !ok {
			return 0, fmt.Errorf("unterminated NaN payload %q", s)
		}
		hex = strings.TrimPrefix(hex, "0x")
		bits, err := strconv.ParseUint(hex, 16, width*8)
		if err != nil {
			return 0, err
		}
		if !isNaN(bits, width) {
			return 0, fmt.Errorf("%s is not a NaN", s)
		}
		return bits, nil
	}
	if strings.EqualFold(s, "nan") {
		if width == 4 {
			return quietNaN32, nil
		}
		return quietNaN64, nil
	}
	f, err := strconv.ParseFloat(s, width*8)
	if err != nil {
		return 0, err
	}
	if width == 4 {
		return uint64(math.Float32bits(float32(f))), nil
	}
	return math.Float64bits(f), nil
}

func isNaN(bits uint64, width int) bool {
	if width == 4 {
		f := math.Float32frombits(uint32(bits))
		return f != f
	}
	return math.IsNaN(math.Float64frombits(bits))
}
