package game

import (
	"fmt"
	"strings"
)

// ValidateHard checks word against the constraints revealed by prior:
// every GREEN letter must stay at its position and every YELLOW letter
// must appear somewhere in word. The first broken requirement is returned
// as a KindHardModeViolation error; nil means the guess is allowed.
func ValidateHard(word string, prior []Guess) error {
	fixed := make(map[int]byte)
	var required []byte // in order of first appearance
	seen := make(map[byte]bool)

	for _, g := range prior {
		for i, c := range g.Clues {
			switch c {
			case ClueGreen:
				fixed[i] = g.Word[i]
			case ClueYellow:
				if !seen[g.Word[i]] {
					seen[g.Word[i]] = true
					required = append(required, g.Word[i])
				}
			}
		}
	}

	for p := 0; p < len(word); p++ {
		if want, ok := fixed[p]; ok && word[p] != want {
			return &Error{
				Kind:     KindHardModeViolation,
				Message:  fmt.Sprintf("hard mode: letter %d must be %s", p+1, strings.ToUpper(string(want))),
				Letter:   string(want),
				Position: p,
			}
		}
	}

	for _, l := range required {
		if strings.IndexByte(word, l) < 0 {
			return &Error{
				Kind:     KindHardModeViolation,
				Message:  fmt.Sprintf("hard mode: guess must contain %s", strings.ToUpper(string(l))),
				Letter:   string(l),
				Position: -1,
			}
		}
	}
	return nil
}
