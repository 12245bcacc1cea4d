package util

import (
	"strconv"
	"strings"
)

// ParseDecimal accepts both dot and French comma decimal separators
// ("2.5" and "2,5"). Thousands separators are not expected in catalog input.
func ParseDecimal(input string) (float64, error) {
	compact := strings.TrimSpace(input)
	compact = strings.ReplaceAll(compact, " ", "")
	compact = strings.ReplaceAll(compact, " ", "")
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		compact = strings.ReplaceAll(compact, ",", ".")
	}
	return strconv.ParseFloat(compact, 64)
}
