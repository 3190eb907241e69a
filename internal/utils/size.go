package utils

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const kibibyte = 1024

// byteUnits are the suffixes used by FormatFileSize, each kibibyte times the
// previous one.
var byteUnits = []string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count with a lower-case unit, keeping one
// decimal below ten units. Negative counts render as zero.
func FormatFileSize(byteCount int64) string {
	if byteCount < kibibyte {
		return strconv.FormatInt(max(byteCount, 0), 10) + byteUnits[0]
	}
	value := float64(byteCount)
	unitIndex := 0
	for value >= kibibyte && unitIndex < len(byteUnits)-1 {
		value /= kibibyte
		unitIndex++
	}
	precision := 0
	if value < 10 {
		precision = 1
	}
	return strings.TrimSuffix(strconv.FormatFloat(value, 'f', precision, 64), ".0") + byteUnits[unitIndex]
}

// SizeField is a zap field holding a human-readable byte count.
func SizeField(key string, byteCount int) zap.Field {
	return zap.String(key, FormatFileSize(int64(byteCount)))
}
