package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveLanguage_Canonical(t *testing.T) {
	id, err := ResolveLanguage("python")
	assert.NoError(t, err)
	assert.Equal(t, 71, id)

	id, err = ResolveLanguage("javascript")
	assert.NoError(t, err)
	assert.Equal(t, 63, id)
}

func TestResolveLanguage_CaseInsensitive(t *testing.T) {
	for _, name := range []string{"Python", "PYTHON", "pYtHoN", "  python  "} {
		id, err := ResolveLanguage(name)
		assert.NoError(t, err, name)
		assert.Equal(t, 71, id, name)
	}
}

func TestResolveLanguage_Aliases(t *testing.T) {
	cases := map[string]int{
		"js":     63,
		"py":     71,
		"golang": 60,
		"C++":    54,
		"ts":     74,
		"c#":     51,
	}
	for alias, want := range cases {
		id, err := ResolveLanguage(alias)
		assert.NoError(t, err, alias)
		assert.Equal(t, want, id, alias)
	}
}

func TestResolveLanguage_Unsupported(t *testing.T) {
	for _, name := range []string{"", "brainfuck", "cobol", "python2.7"} {
		_, err := ResolveLanguage(name)
		assert.ErrorIs(t, err, ErrUnsupportedLanguage, name)
	}
}
