package pdf

import (
	"bytes"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/cardkit/internal/card"
)

func TestWriteCompanyAndName(t *testing.T) {
	out, err := Write(card.Fields{Company: "Acme", Name: "A"}, 91, 55)
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "%PDF-1.4"))
	assert.Equal(t, 2, strings.Count(s, ") Tj"))
	assert.Contains(t, s, "/Size 6")
	assert.Contains(t, s, "(Acme) Tj")
	assert.Contains(t, s, "/F1 12 Tf")
	assert.Contains(t, s, "/F1 14 Tf")
	assert.Contains(t, s, "/MediaBox [0 0 257.95 155.91]")
	assert.True(t, strings.HasSuffix(s, "%%EOF\n"))
}

func TestWriteLinePositions(t *testing.T) {
	out, err := Write(card.Fields{Company: "C", Website: "W"}, 91, 55)
	require.NoError(t, err)

	s := string(out)
	// 155.90575 - 28.3465 and 155.90575 - 127.55925
	assert.Contains(t, s, "28.35 127.56 Td (C) Tj")
	assert.Contains(t, s, "28.35 28.35 Td (W) Tj")
}

func TestWriteEmptyFields(t *testing.T) {
	out, err := Write(card.Fields{}, 91, 55)
	require.NoError(t, err)

	s := string(out)
	assert.Equal(t, 0, strings.Count(s, "Tj"))
	assert.Contains(t, s, "<< /Length 0 >>\nstream\nendstream")
}

func TestWriteInvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"zero width", 0, 55},
		{"negative height", 91, -1},
		{"nan", math.NaN(), 55},
		{"inf", 91, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Write(card.Fields{Name: "x"}, tt.w, tt.h)
			assert.Error(t, err)
		})
	}
}

func TestWriteXrefOffsets(t *testing.T) {
	out, err := Write(card.Fields{
		Company: "Acme (Japan)",
		Name:    `Back\slash`,
		Email:   "a@b.co",
	}, 91, 55)
	require.NoError(t, err)

	startxref := regexp.MustCompile(`startxref\n(\d+)\n`).FindSubmatch(out)
	require.NotNil(t, startxref)
	xrefAt, err := strconv.Atoi(string(startxref[1]))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out[xrefAt:], []byte("xref\n0 6\n")))

	entries := regexp.MustCompile(`(\d{10}) 00000 n \n`).FindAllSubmatch(out, -1)
	require.Len(t, entries, 5)
	for i, e := range entries {
		off, err := strconv.Atoi(string(e[1]))
		require.NoError(t, err)
		want := strconv.Itoa(i+1) + " 0 obj\n"
		assert.True(t, bytes.HasPrefix(out[off:], []byte(want)), "object %d at %d", i+1, off)
	}

	length := regexp.MustCompile(`<< /Length (\d+) >>\nstream\n`).FindSubmatchIndex(out)
	require.NotNil(t, length)
	n, err := strconv.Atoi(string(out[length[2]:length[3]]))
	require.NoError(t, err)
	streamStart := length[1]
	assert.True(t, bytes.HasPrefix(out[streamStart+n:], []byte("endstream")))
}

func TestEscapeLiteral(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a(b)c", `a\(b\)c`},
		{`C:\path`, `C:\\path`},
		{`\(`, `\\\(`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeLiteral(tt.in), tt.in)
	}
}
