package game

import (
	"fmt"

	"github.com/bingo-live/backend/apperr"
)

// Pattern is a recognized winning shape. The zero value is not valid; use
// ParsePattern at the boundary.
type Pattern string

const (
	PatternRow      Pattern = "row"
	PatternColumn   Pattern = "column"
	PatternDiagonal Pattern = "diagonal"
	PatternFull     Pattern = "full"
	PatternAny      Pattern = "any"
)

// anyOrder is the fixed resolution order for PatternAny. When several shapes
// are simultaneously complete, the earliest one here wins.
var anyOrder = []Pattern{PatternRow, PatternColumn, PatternDiagonal, PatternFull}

// ParsePattern validates a client-supplied pattern name.
func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(s); p {
	case PatternRow, PatternColumn, PatternDiagonal, PatternFull, PatternAny:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown pattern %q", apperr.ErrValidation, s)
	}
}

// CheckPattern reports whether card satisfies pattern given the drawn
// numbers. It is pure: only the card's fixed numbers and the drawn sequence
// are read. For PatternAny the concrete matching pattern is returned.
func CheckPattern(card []int, drawn []int, pattern Pattern) (bool, Pattern) {
	if len(card) != CardSize {
		return false, ""
	}

	marked := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		marked[n] = true
	}

	if pattern == PatternAny {
		for _, p := range anyOrder {
			if ok, _ := checkOne(card, marked, p); ok {
				return true, p
			}
		}
		return false, ""
	}

	ok, _ := checkOne(card, marked, pattern)
	if ok {
		return true, pattern
	}
	return false, ""
}

func checkOne(card []int, marked map[int]bool, pattern Pattern) (bool, Pattern) {
	cell := func(i int) bool {
		return card[i] == FreeCell || marked[card[i]]
	}

	line := func(idx [5]int) bool {
		for _, i := range idx {
			if !cell(i) {
				return false
			}
		}
		return true
	}

	switch pattern {
	case PatternRow:
		for row := 0; row < 5; row++ {
			if line([5]int{row * 5, row*5 + 1, row*5 + 2, row*5 + 3, row*5 + 4}) {
				return true, pattern
			}
		}
	case PatternColumn:
		for col := 0; col < 5; col++ {
			if line([5]int{col, col + 5, col + 10, col + 15, col + 20}) {
				return true, pattern
			}
		}
	case PatternDiagonal:
		if line([5]int{0, 6, 12, 18, 24}) || line([5]int{4, 8, 12, 16, 20}) {
			return true, pattern
		}
	case PatternFull:
		for i := 0; i < CardSize; i++ {
			if !cell(i) {
				return false, ""
			}
		}
		return true, pattern
	}
	return false, ""
}
