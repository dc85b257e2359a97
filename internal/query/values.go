package query

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Float reads a numeric cell, treating NULL and unparseable values as zero.
func Float(value any) float64 {
	switch typed := value.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return 0
		}
		return typed
	case float32:
		return Float(float64(typed))
	case int:
		return float64(typed)
	case int8:
		return float64(typed)
	case int16:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case uint8:
		return float64(typed)
	case uint16:
		return float64(typed)
	case uint32:
		return float64(typed)
	case uint64:
		return float64(typed)
	case *big.Int:
		if typed == nil {
			return 0
		}
		f, _ := new(big.Float).SetInt(typed).Float64()
		return f
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return Float(parsed)
	case []byte:
		return Float(string(typed))
	case interface{ Float64() float64 }:
		return Float(typed.Float64())
	default:
		return 0
	}
}

// Int reads an integral cell, truncating fractional values.
func Int(value any) int64 {
	switch typed := value.(type) {
	case int64:
		return typed
	case int:
		return int64(typed)
	case int32:
		return int64(typed)
	default:
		return int64(Float(value))
	}
}

// String reads a cell as text; NULL becomes the empty string.
func String(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []byte:
		return string(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return fmt.Sprint(typed)
	}
}
