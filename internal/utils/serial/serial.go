// Package serial produces sequential human-readable serial numbers for ledger
// entries, one namespace per transaction type (CR-0001, DR-0001, ST-0001, ...).
package serial

import (
	"fmt"
	"regexp"
	"strconv"
)

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Next returns the serial that follows last within the prefix's namespace.
// The sequence is zero-padded to at least 4 digits and grows beyond 4 digits
// naturally once the counter exceeds 9999. An empty or unparseable last serial
// starts the sequence at 0001.
func Next(prefix, last string) string {
	seq := 0
	if last != "" {
		if m := trailingDigits.FindString(last); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				seq = n
			}
		}
	}
	seq++

	width := 4
	if digits := len(strconv.Itoa(seq)); digits > width {
		width = digits
	}
	return fmt.Sprintf("%s-%0*d", prefix, width, seq)
}
