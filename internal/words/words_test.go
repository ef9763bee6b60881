package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesAndFilters(t *testing.T) {
	d, err := New(
		[]string{" CRANE ", "level", "toolong", "ab1de", "crane", ""},
		[]string{"Slate", "eerie", "nope"},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"crane", "level"}, d.Answers())
	assert.True(t, d.IsValid("CRANE"))
	assert.True(t, d.IsValid("slate"))
	assert.True(t, d.IsValid("eerie"))
	assert.False(t, d.IsValid("nope"))
	assert.False(t, d.IsValid("toolong"))

	assert.True(t, d.IsAnswer("level"))
	assert.False(t, d.IsAnswer("slate"), "allowed-only words are not answers")

	a, g := d.Stats()
	assert.Equal(t, 2, a)
	assert.Equal(t, 4, g)
}

func TestNewRejectsEmptyAnswers(t *testing.T) {
	_, err := New([]string{"xx"}, []string{"crane"})
	require.ErrorIs(t, err, ErrNoAnswers)
}

func TestRandomAnswerDrawsFromPool(t *testing.T) {
	d, err := New([]string{"crane", "level", "eerie"}, nil)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		w, err := d.RandomAnswer()
		require.NoError(t, err)
		assert.True(t, d.IsAnswer(w))
	}
}

func TestAnswerAtWraps(t *testing.T) {
	d, err := New([]string{"crane", "level"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "crane", d.AnswerAt(0))
	assert.Equal(t, "level", d.AnswerAt(3))
	assert.Equal(t, "level", d.AnswerAt(-1))
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	ans := filepath.Join(dir, "answers.txt")
	all := filepath.Join(dir, "allowed.txt")
	require.NoError(t, os.WriteFile(ans, []byte("crane\nlevel\n"), 0o644))
	require.NoError(t, os.WriteFile(all, []byte("slate\n"), 0o644))

	d, err := Load(ans, all)
	require.NoError(t, err)
	assert.True(t, d.IsAnswer("crane"))
	assert.True(t, d.IsValid("slate"))

	d, err = Load("", all)
	require.NoError(t, err)
	assert.True(t, d.IsAnswer("slate"), "allowed file doubles as answers")

	_, err = Load(filepath.Join(dir, "missing.txt"), all)
	assert.Error(t, err)
}

func TestLoadEmbedded(t *testing.T) {
	d, err := Load("", "")
	require.NoError(t, err)
	assert.True(t, d.IsAnswer("crane"))
	assert.True(t, d.IsValid("slate"))
}

func TestIsWellFormed(t *testing.T) {
	assert.True(t, IsWellFormed("crane"))
	assert.False(t, IsWellFormed("Crane"))
	assert.False(t, IsWellFormed("cran"))
	assert.False(t, IsWellFormed("cr4ne"))
}
