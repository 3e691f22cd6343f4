package google

import (
	"fmt"
	"strings"
)

// quoteSheet returns name quoted for use in A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnLetter converts a 1-based column index to its A1 letters.
func columnLetter(n int) string {
	if n < 1 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// tableRange is the A1 range covering rows, sized by the widest row.
func tableRange(name string, rows [][]any) string {
	width := 1
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return fmt.Sprintf("%s!A1:%s%d", quoteSheet(name), columnLetter(width), len(rows))
}
