package gateway

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Helpers shared by the provider adapters. Provider payloads are loosely typed:
// numeric fields arrive as JSON numbers or strings depending on the channel.

func stringField(raw map[string]interface{}, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func amountField(raw map[string]interface{}, key string) (int64, bool) {
	v, ok := raw[key]
	if !ok {
		return 0, false
	}
	return toMinorUnits(v)
}

func toMinorUnits(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(math.Round(t)), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int64(math.Round(f)), true
	default:
		return 0, false
	}
}
