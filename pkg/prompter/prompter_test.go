package prompter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withInput(t *testing.T, input string) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	t.Cleanup(SetIO(strings.NewReader(input), &out))
	return &out
}

func TestPromptString(t *testing.T) {
	out := withInput(t, "  ada  \n")

	got, err := PromptString("Username: ")
	require.NoError(t, err)
	assert.Equal(t, "ada", got)
	assert.Equal(t, "Username: ", out.String())
}

func TestSequentialPromptsShareBufferedInput(t *testing.T) {
	withInput(t, "ada\nsecret1\ny\n")

	user, err := PromptString("Username: ")
	require.NoError(t, err)
	pass, err := PromptPassword("Password: ")
	require.NoError(t, err)
	ok, err := PromptConfirm("Continue?")
	require.NoError(t, err)

	assert.Equal(t, "ada", user)
	assert.Equal(t, "secret1", pass)
	assert.True(t, ok)
}

func TestPromptConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "sure\n": false} {
		withInput(t, input)
		got, err := PromptConfirm("Delete?")
		require.NoError(t, err)
		assert.Equal(t, want, got, input)
	}
}

func TestPromptConfirm_EOF(t *testing.T) {
	withInput(t, "")
	_, err := PromptConfirm("Delete?")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestPromptSelect(t *testing.T) {
	out := withInput(t, "2\n")

	idx, err := PromptSelect("Sort by", []string{"score", "newest"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "2) newest")

	withInput(t, "9\n")
	_, err = PromptSelect("Sort by", []string{"score"})
	assert.Error(t, err)
}

func TestPromptMultiline(t *testing.T) {
	withInput(t, "first line\nsecond line\n\nignored\n")

	got, err := PromptMultiline("Answer")
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line", got)
}

func TestPromptMultiline_EndOfInput(t *testing.T) {
	withInput(t, "only line")

	got, err := PromptMultiline("Question")
	require.NoError(t, err)
	assert.Equal(t, "only line", got)
}
