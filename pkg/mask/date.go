// Package mask holds presentational input masks.
package mask

import "strings"

// DateDigits is the number of digits a complete DD/MM/YYYY value carries.
const DateDigits = 8

// Date keeps the digits of raw, caps them at DateDigits and inserts a slash
// before the third and fifth digit. "01022020" becomes "01/02/2020".
func Date(raw string) string {
	var b strings.Builder
	count := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		if count == DateDigits {
			break
		}
		if count == 2 || count == 4 {
			b.WriteByte('/')
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
