package tenant

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdioPrompter(t *testing.T) {
	t.Run("returns the chosen option", func(t *testing.T) {
		var out bytes.Buffer
		p := &StdioPrompter{In: strings.NewReader("2\n"), Out: &out}

		choice, err := p.Select("Select a tenant", []string{"Alpha", "Beta", "Gamma"})
		require.NoError(t, err)
		assert.Equal(t, "Beta", choice)

		assert.Contains(t, out.String(), "Select a tenant:")
		assert.Contains(t, out.String(), "1) Alpha")
		assert.Contains(t, out.String(), "3) Gamma")
	})

	t.Run("whitespace around the number is tolerated", func(t *testing.T) {
		p := &StdioPrompter{In: strings.NewReader("  1 \n"), Out: &bytes.Buffer{}}
		choice, err := p.Select("Pick", []string{"only"})
		require.NoError(t, err)
		assert.Equal(t, "only", choice)
	})

	t.Run("out-of-range selection fails", func(t *testing.T) {
		p := &StdioPrompter{In: strings.NewReader("5\n"), Out: &bytes.Buffer{}}
		_, err := p.Select("Pick", []string{"a", "b"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid selection")
	})

	t.Run("non-numeric input fails", func(t *testing.T) {
		p := &StdioPrompter{In: strings.NewReader("beta\n"), Out: &bytes.Buffer{}}
		_, err := p.Select("Pick", []string{"a", "b"})
		require.Error(t, err)
	})

	t.Run("zero is rejected", func(t *testing.T) {
		p := &StdioPrompter{In: strings.NewReader("0\n"), Out: &bytes.Buffer{}}
		_, err := p.Select("Pick", []string{"a"})
		require.Error(t, err)
	})

	t.Run("empty options fail", func(t *testing.T) {
		p := &StdioPrompter{In: strings.NewReader("1\n"), Out: &bytes.Buffer{}}
		_, err := p.Select("Pick", nil)
		require.Error(t, err)
	})

	t.Run("input without trailing newline is read", func(t *testing.T) {
		p := &StdioPrompter{In: strings.NewReader("1"), Out: &bytes.Buffer{}}
		choice, err := p.Select("Pick", []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, "a", choice)
	})
}
