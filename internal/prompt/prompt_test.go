package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidthForAnswers(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("1280\n\ns\nskip\n"), &out, nil)

	w, skip, err := p.WidthFor("a.jpg", 100)
	require.NoError(t, err)
	assert.Equal(t, 1280, w)
	assert.False(t, skip)

	w, skip, err = p.WidthFor("b.jpg", 100)
	require.NoError(t, err)
	assert.Equal(t, 0, w)
	assert.False(t, skip)

	_, skip, err = p.WidthFor("c.mp4", 100)
	require.NoError(t, err)
	assert.True(t, skip)

	_, skip, err = p.WidthFor("d.mp4", 100)
	require.NoError(t, err)
	assert.True(t, skip)

	assert.Contains(t, out.String(), "a.jpg")
}

func TestWidthForRetriesThenKeeps(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("nope\n-5\nzero\n"), &out, nil)

	w, skip, err := p.WidthFor("a.jpg", 100)
	require.NoError(t, err)
	assert.Equal(t, 0, w)
	assert.False(t, skip)
	assert.Contains(t, out.String(), "positive number")
}

func TestWidthForEOFKeepsSource(t *testing.T) {
	p := New(strings.NewReader(""), &bytes.Buffer{}, nil)
	w, skip, err := p.WidthFor("a.jpg", 100)
	require.NoError(t, err)
	assert.Equal(t, 0, w)
	assert.False(t, skip)
}
