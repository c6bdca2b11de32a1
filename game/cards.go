package game

import "math/rand"

const (
	// FreeCell is the sentinel value of the free center cell. It is always
	// considered marked.
	FreeCell = 0

	// FreeIndex is the fixed position of the free cell in the 25-cell
	// row-major grid (row 2, column 2).
	FreeIndex = 12

	// CardSize is the number of cells on a card.
	CardSize = 25

	// MaxNumber is the highest drawable number.
	MaxNumber = 75
)

// columnRanges holds the inclusive value range of each column, B through O.
var columnRanges = [5][2]int{
	{1, 15},  // B
	{16, 30}, // I
	{31, 45}, // N
	{46, 60}, // G
	{61, 75}, // O
}

// GenerateCard produces a 25-cell card laid out row-major: each row holds one
// value per column B,I,N,G,O. Column values are drawn without replacement
// from that column's range; the N column has four values plus the free cell.
func GenerateCard() []int {
	cols := make([][]int, 5)
	for i, r := range columnRanges {
		count := 5
		if i == 2 {
			count = 4
		}
		cols[i] = pickUnique(r[0], r[1], count)
	}

	card := make([]int, 0, CardSize)
	for row := 0; row < 5; row++ {
		for col := 0; col < 5; col++ {
			if col == 2 {
				switch {
				case row == 2:
					card = append(card, FreeCell)
				case row < 2:
					card = append(card, cols[2][row])
				default:
					card = append(card, cols[2][row-1])
				}
				continue
			}
			card = append(card, cols[col][row])
		}
	}
	return card
}

// pickUnique draws count distinct values from [min,max] in random order.
func pickUnique(min, max, count int) []int {
	pool := make([]int, 0, max-min+1)
	for n := min; n <= max; n++ {
		pool = append(pool, n)
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:count]
}

// DrawFrom selects uniformly at random a number in 1..MaxNumber that is not
// in drawn. The second return is false when the pool is exhausted.
func DrawFrom(drawn []int) (int, bool) {
	used := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		used[n] = true
	}

	remaining := make([]int, 0, MaxNumber-len(used))
	for n := 1; n <= MaxNumber; n++ {
		if !used[n] {
			remaining = append(remaining, n)
		}
	}
	if len(remaining) == 0 {
		return 0, false
	}
	return remaining[rand.Intn(len(remaining))], true
}
