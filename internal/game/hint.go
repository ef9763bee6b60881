package game

// nextHint picks the letter to disclose next: the lowest position that is
// neither GREEN in any prior guess nor already disclosed. ok is false when
// disclosing it would leave no position of the answer unknown.
func nextHint(answer string, guesses []Guess, hints []Hint) (h Hint, ok bool) {
	known := make([]bool, len(answer))
	for _, g := range guesses {
		for i, c := range g.Clues {
			if c == ClueGreen {
				known[i] = true
			}
		}
	}
	for _, prev := range hints {
		known[prev.Position] = true
	}

	unknown := 0
	first := -1
	for p, k := range known {
		if !k {
			unknown++
			if first < 0 {
				first = p
			}
		}
	}
	if unknown <= 1 {
		return Hint{}, false
	}
	return Hint{
		Position:     first,
		Letter:       answer[first : first+1],
		AfterGuesses: len(guesses),
	}, true
}
