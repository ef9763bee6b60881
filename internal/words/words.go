// internal/words/words.go
//
// Dictionary of valid guesses and candidate answers.
//
// Responsibilities:
//   - Load answer and allowed guess lists from files or fall back to the
//     lists embedded in the assets package.
//   - Maintain sets for quick lookups (answers only, answers∪guesses).
//   - Supply RandomAnswer, IsValid, IsAnswer and Stats.
//
// Word Lists:
//   - "answers": canonical solutions (exactly 5 lowercase letters).
//   - "allowed": valid guesses (always includes answers).
//
// Source selection (Load):
//   1. answersPath and allowedPath both set: answers from the first,
//      allowed guesses from the second.
//   2. Only allowedPath set: that file is used for both.
//   3. Neither set: embedded assets.
//
// A Dictionary is immutable once built and safe for concurrent use.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/wordle/apps/go-engine/assets"
)

// Length is the number of letters in every word.
const Length = 5

// ErrNoAnswers is returned when the answer list ends up empty.
var ErrNoAnswers = errors.New("words: answers list is empty")

// Dictionary holds the answer pool and the allowed guess set.
type Dictionary struct {
	answers    []string            // canonical answers
	allowedSet map[string]struct{} // answers ∪ guesses
	answersSet map[string]struct{} // answers only
}

// New builds a Dictionary from raw lists. Entries are normalized and
// anything that is not 5 letters a–z is dropped. Every answer is allowed.
func New(answerList, allowedList []string) (*Dictionary, error) {
	ans := normalize(answerList)
	if len(ans) == 0 {
		return nil, ErrNoAnswers
	}
	d := &Dictionary{
		answers:    ans,
		answersSet: toSet(ans),
		allowedSet: toSet(ans),
	}
	for _, w := range normalize(allowedList) {
		d.allowedSet[w] = struct{}{}
	}
	return d, nil
}

// Load builds a Dictionary from the given files, or from the embedded
// lists when both paths are empty.
func Load(answersPath, allowedPath string) (*Dictionary, error) {
	switch {
	case answersPath != "" && allowedPath != "":
		ansList, err := readWordFile(answersPath)
		if err != nil {
			return nil, fmt.Errorf("read answers: %w", err)
		}
		allowList, err := readWordFile(allowedPath)
		if err != nil {
			return nil, fmt.Errorf("read allowed: %w", err)
		}
		return New(ansList, allowList)

	case allowedPath != "":
		allowList, err := readWordFile(allowedPath)
		if err != nil {
			return nil, fmt.Errorf("read allowed: %w", err)
		}
		return New(allowList, nil)

	default:
		ansList, err := assets.AnswersList()
		if err != nil {
			return nil, fmt.Errorf("embedded answers: %w", err)
		}
		allowList, err := assets.AllowedList()
		if err != nil {
			return nil, fmt.Errorf("embedded allowed: %w", err)
		}
		return New(ansList, allowList)
	}
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// normalize lowercases, trims and keeps valid, de-duplicated words in order.
func normalize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, line := range list {
		w := Normalize(line)
		if !IsWellFormed(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// Normalize trims surrounding space and lowercases w.
func Normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// IsWellFormed reports whether w is exactly Length lowercase ASCII letters.
func IsWellFormed(w string) bool {
	if len(w) != Length {
		return false
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

// RandomAnswer returns a uniformly chosen answer using crypto/rand.
func (d *Dictionary) RandomAnswer() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(d.answers))))
	if err != nil {
		return "", fmt.Errorf("random answer: %w", err)
	}
	return d.answers[n.Int64()], nil
}

// IsValid reports whether w is a valid guess (answers ∪ guesses).
func (d *Dictionary) IsValid(w string) bool {
	_, ok := d.allowedSet[Normalize(w)]
	return ok
}

// IsAnswer reports whether w is in the answer pool.
func (d *Dictionary) IsAnswer(w string) bool {
	_, ok := d.answersSet[Normalize(w)]
	return ok
}

// Answers returns a copy of the answer pool in load order.
func (d *Dictionary) Answers() []string {
	return append([]string(nil), d.answers...)
}

// AnswerAt returns the i-th answer; i is reduced modulo the pool size.
func (d *Dictionary) AnswerAt(i int) string {
	n := len(d.answers)
	return d.answers[((i%n)+n)%n]
}

// Stats returns counts of loaded words: (answers, allowed).
func (d *Dictionary) Stats() (answersCount int, allowedCount int) {
	return len(d.answers), len(d.allowedSet)
}
