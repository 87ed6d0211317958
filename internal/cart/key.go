package cart

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Key formats the item key for a product and size. Size 0 means no size.
func Key(productID, sizeID uint) string {
	return strconv.FormatUint(uint64(productID), 10) + ":" + strconv.FormatUint(uint64(sizeID), 10)
}

// ParseKey splits "pid" or "pid:sizeID" on the first colon. Both parts must
// be integers. Negative size ids are reported as 0.
func ParseKey(key string) (productID int64, sizeID int64, ok bool) {
	pidPart, sizePart, hasSize := strings.Cut(key, ":")

	productID, err := strconv.ParseInt(strings.TrimSpace(pidPart), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	if !hasSize {
		return productID, 0, true
	}

	sizeID, err = strconv.ParseInt(strings.TrimSpace(sizePart), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	if sizeID < 0 {
		sizeID = 0
	}
	return productID, sizeID, true
}

// MaxQuantity bounds every stored quantity so JSON round-trips and merged
// sums stay exact.
const MaxQuantity = math.MaxInt32

func clampQuantity(n int64) int {
	if n > MaxQuantity {
		return MaxQuantity
	}
	return int(n)
}

// addQuantity sums two non-negative quantities, saturating at MaxQuantity.
func addQuantity(a, b int) int {
	return clampQuantity(int64(a) + int64(b))
}

// parseQuantity accepts integral JSON numbers and integer strings. Values
// above MaxQuantity are clamped to it.
func parseQuantity(v any) (int, bool) {
	switch q := v.(type) {
	case int:
		return clampQuantity(int64(q)), true
	case int64:
		return clampQuantity(q), true
	case float64:
		if q != math.Trunc(q) || math.IsInf(q, 0) {
			return 0, false
		}
		if q > MaxQuantity {
			return MaxQuantity, true
		}
		if q < 0 {
			return -1, true
		}
		return int(q), true
	case json.Number:
		n, err := q.Int64()
		if err != nil {
			return 0, false
		}
		return clampQuantity(n), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(q), 10, 64)
		if err != nil {
			return 0, false
		}
		return clampQuantity(n), true
	}
	return 0, false
}

// ParseQuantityInput reads a quantity from form input, defaulting to 1.
func ParseQuantityInput(s string) int {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 1
	}
	return clampQuantity(n)
}

// ParseSizeInput reads a size id from form input; anything unusable is 0.
func ParseSizeInput(s string) uint {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

// sameCart reports whether raw already is the normalized cart, encoding
// included: a quantity stored as a string still needs rewriting.
func sameCart(raw Raw, c Cart) bool {
	if len(raw) != len(c) {
		return false
	}
	for key, v := range raw {
		want, ok := c[key]
		if !ok {
			return false
		}
		if _, isString := v.(string); isString {
			return false
		}
		got, ok := parseQuantity(v)
		if !ok || got != want {
			return false
		}
		if f, isFloat := v.(float64); isFloat && f != float64(got) {
			return false
		}
	}
	return true
}
