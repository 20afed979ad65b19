package omr

// Answer symbols that do not name a choice.
const (
	Blank     byte = 'V'
	Ambiguous byte = 'X'
)

// Threshold returns the per-question cutoff for counts: half the largest
// count plus the integer mean divided by 1.5, truncated.
func Threshold(counts []int) int {
	if len(counts) == 0 {
		return 0
	}
	maxCount, total := 0, 0
	for _, c := range counts {
		maxCount = max(maxCount, c)
		total += c
	}
	avg := total / len(counts)
	return int(float64(maxCount/2) + float64(avg)/1.5)
}

// Selected returns the indices whose count exceeds Threshold(counts).
func Selected(counts []int) []int {
	t := Threshold(counts)
	var out []int
	for i, c := range counts {
		if c > t {
			out = append(out, i)
		}
	}
	return out
}

// Symbol names choice i: a letter from 'A', or a digit from '0' for
// numeric regions.
func Symbol(i int, isNumber bool) byte {
	if isNumber {
		return byte('0' + i)
	}
	return byte('A' + i)
}

// Decide maps the marked-pixel counts of one question's choices to its
// answer symbol. A single count above the threshold names that choice;
// none yields Blank and several yield Ambiguous.
func Decide(counts []int, isNumber bool) byte {
	sel := Selected(counts)
	switch len(sel) {
	case 0:
		return Blank
	case 1:
		return Symbol(sel[0], isNumber)
	default:
		return Ambiguous
	}
}
