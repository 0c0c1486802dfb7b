package idml

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/cardkit/internal/card"
)

func buildZip(t *testing.T, files [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f[0])
		require.NoError(t, err)
		_, err = w.Write([]byte(f[1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadRoundTrip(t *testing.T) {
	out, err := Write(card.Fields{Company: "Acme & Co"}, sampleLayout())
	require.NoError(t, err)

	raw, err := Read(out)
	require.NoError(t, err)

	require.Len(t, raw.Fragments, 3)
	assert.Equal(t, "Acme & Co\nStale\nSince 1999", raw.Text)

	first := raw.Fragments[0]
	assert.Equal(t, "Gothic", first.FontFamily)
	assert.Equal(t, 10.0, first.FontSizePt)
	assert.True(t, first.Bold)
	assert.False(t, first.Italic)
	assert.Equal(t, "#112233", first.Color)

	assert.True(t, raw.Fragments[1].Italic)
	assert.True(t, raw.Fragments[2].Bold && raw.Fragments[2].Italic)

	assert.InDelta(t, 91, raw.PageWidthMM, 0.01)
	assert.InDelta(t, 55, raw.PageHeightMM, 0.01)
	assert.Equal(t, 1, raw.PageCount)
}

func TestReadStoriesWithoutSpreads(t *testing.T) {
	data := buildZip(t, [][2]string{
		{"Stories/Story_b.xml", `<Story Self="b"><ParagraphStyleRange><CharacterStyleRange PointSize="8"><Content>second</Content></CharacterStyleRange></ParagraphStyleRange></Story>`},
		{"Stories/Story_a.xml", `<Story Self="a"><ParagraphStyleRange><CharacterStyleRange AppliedFont="Mincho" FontStyle="W6 Bold"><Content>first <b>bit</b></Content><Br/><Content>line &amp; more</Content></CharacterStyleRange></ParagraphStyleRange></Story>`},
		{"Stories/readme.txt", "ignored"},
	})

	raw, err := Read(data)
	require.NoError(t, err)

	require.Len(t, raw.Fragments, 2)
	assert.Equal(t, "first bit\nline & more", raw.Fragments[0].Text)
	assert.Equal(t, "Mincho", raw.Fragments[0].FontFamily)
	assert.True(t, raw.Fragments[0].Bold)
	assert.Equal(t, "second", raw.Fragments[1].Text)
	assert.Equal(t, 8.0, raw.Fragments[1].FontSizePt)

	assert.Equal(t, 91.0, raw.PageWidthMM)
	assert.Equal(t, 55.0, raw.PageHeightMM)
}

func TestReadPageSizeAttributes(t *testing.T) {
	data := buildZip(t, [][2]string{
		{"Spreads/Spread_x.xml", `<Spread><Page Self="p" PageWidth="283.4650" PageHeight="141.7325"/></Spread>`},
	})

	raw, err := Read(data)
	require.NoError(t, err)
	assert.InDelta(t, 100, raw.PageWidthMM, 0.01)
	assert.InDelta(t, 50, raw.PageHeightMM, 0.01)
	assert.Empty(t, raw.Text)
}

func TestReadNotZip(t *testing.T) {
	_, err := Read([]byte("this is not a zip"))
	assert.ErrorIs(t, err, ErrNotPackage)
}

func TestGeometricBounds(t *testing.T) {
	w, h, ok := geometricBounds("10 20 110 220")
	assert.True(t, ok)
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 100.0, h)

	_, _, ok = geometricBounds("1 2 3")
	assert.False(t, ok)
	_, _, ok = geometricBounds("0 0 0 0")
	assert.False(t, ok)
}
