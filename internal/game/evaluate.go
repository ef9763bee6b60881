package game

// Evaluate scores guess against answer with the two-pass Wordle algorithm.
// Both words must be the same length and lowercase a–z.
//
// Pass 1:
//   - Seed a per-letter count table from the answer's letters.
//   - Mark exact matches GREEN and decrement that letter's count.
//
// Pass 2:
//   - For each non-green letter: if its count is still positive, mark it
//     YELLOW and decrement; otherwise GREY.
//
// The shared table guarantees that for any letter the number of GREEN and
// YELLOW clues never exceeds its occurrences in the answer.
func Evaluate(guess, answer string) []Clue {
	n := len(guess)
	res := make([]Clue, n)

	var counts [26]int
	for i := 0; i < len(answer); i++ {
		counts[idx(answer[i])]++
	}

	for i := 0; i < n; i++ {
		if guess[i] == answer[i] {
			res[i] = ClueGreen
			counts[idx(guess[i])]--
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == ClueGreen {
			continue
		}
		j := idx(guess[i])
		if counts[j] > 0 {
			res[i] = ClueYellow
			counts[j]--
		} else {
			res[i] = ClueGrey
		}
	}
	return res
}

// idx maps a lowercase ASCII letter to 0..25.
// Inputs are validated to a–z before scoring.
func idx(c byte) int { return int(c - 'a') }

// allGreen returns true if every clue is GREEN.
func allGreen(clues []Clue) bool {
	for _, c := range clues {
		if c != ClueGreen {
			return false
		}
	}
	return true
}
