package filetype

import (
	"math"
	"strconv"
)

const (
	kb = 1 << 10
	mb = 1 << 20
	gb = 1 << 30
)

// ConvertSize formats a byte count using the largest unit the value reaches.
// digits <= 0 means one decimal.
func ConvertSize(size int64, digits int) string {
	if digits <= 0 {
		digits = 1
	}

	switch {
	case size < kb:
		return strconv.FormatInt(size, 10) + " Bytes"
	case size < mb:
		return strconv.FormatFloat(float64(size)/kb, 'f', digits, 64) + " KB"
	case size < gb:
		return strconv.FormatFloat(float64(size)/mb, 'f', digits, 64) + " MB"
	default:
		return strconv.FormatFloat(float64(size)/gb, 'f', digits, 64) + " GB"
	}
}

// Percentage returns used/total as a percentage rounded to two decimals
func Percentage(used, total int64) float64 {
	if total <= 0 {
		return 0
	}

	p := float64(used) / float64(total) * 100
	return math.Round(p*100) / 100
}
