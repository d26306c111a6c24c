package billing

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultNumberWidth is the zero-padded width of the numeric suffix.
const DefaultNumberWidth = 6

// NextNumber returns the next sequential invoice number for prefix.
//
// Every existing number of the form PREFIX-<digits> is parsed and the highest
// suffix is incremented. Nothing is remembered between calls, so the result
// follows deletions and manually entered numbers on the next call. With no
// matching number the sequence starts at 1.
func NextNumber(prefix string, width int, existing []string) string {
	if width <= 0 {
		width = DefaultNumberWidth
	}
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)$`)

	var highest uint64
	for _, number := range existing {
		m := pattern.FindStringSubmatch(number)
		if m == nil {
			continue
		}
		n, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			// overflowing suffixes are not part of the sequence
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return fmt.Sprintf("%s-%0*d", prefix, width, highest+1)
}
