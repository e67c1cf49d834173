package canopy

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"#ff0000", Color{1, 0, 0, 1}},
		{"#00ff0080", Color{0, 1, 0, float64(0x80) / 255}},
		{"  #FFFFFF ", ColorWhite},
		{"red", Color{1, 0, 0, 1}},
		{"Yellow", Color{1, 1, 0, 1}},
		{"clear", Color{}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseColorErrors(t *testing.T) {
	for _, in := range []string{"", "#", "#fff", "#gggggg", "ff0000", "chartreuse"} {
		_, err := ParseColor(in)
		assert.Error(t, err, "ParseColor(%q)", in)
	}
}

func TestColorMulAndRGBA(t *testing.T) {
	c := Color{1, 0.5, 0.25, 0.5}.Mul(Color{0.5, 1, 1, 1})
	assert.Equal(t, Color{0.5, 0.5, 0.25, 0.5}, c)
	assert.Equal(t, color.RGBA{R: 64, G: 64, B: 32, A: 128}, c.RGBA(), "premultiplied")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, Color{2, -1, 0, 1}.RGBA(), "clamped")
}

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 10}
	assert.True(t, r.Contains(10, 10), "edges are inside")
	assert.True(t, r.Contains(30, 20))
	assert.False(t, r.Contains(31, 15))

	assert.True(t, r.Intersects(Rect{X: 30, Y: 20, Width: 5, Height: 5}), "shared corner")
	assert.False(t, r.Intersects(Rect{X: 40, Y: 10, Width: 5, Height: 5}))

	assert.True(t, Rect{Width: 0, Height: 5}.Empty())
	assert.False(t, r.Empty())

	u := r.Union(Rect{X: 0, Y: 15, Width: 5, Height: 20})
	assert.Equal(t, Rect{X: 0, Y: 10, Width: 30, Height: 25}, u)
	assert.Equal(t, r, Rect{}.Union(r))
	assert.Equal(t, r, r.Union(Rect{}))
}

func TestNodeKindString(t *testing.T) {
	assert.Equal(t, "group", KindGroup.String())
	assert.Equal(t, "stage", KindStage.String())
	assert.Equal(t, "NodeKind(9)", NodeKind(9).String())
	assert.True(t, KindStage.isContainer())
	assert.False(t, KindText.isContainer())
}
