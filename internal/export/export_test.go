package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/cardkit/internal/apperr"
	"github.com/a3tai/cardkit/internal/card"
)

func TestPDFDefaultsSize(t *testing.T) {
	var req PDFRequest
	require.NoError(t, json.Unmarshal([]byte(`{"result":{"card_fields":{"company":"Acme","name":"A"}}}`), &req))

	out, err := NewService().PDF(req)
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "%PDF-1.4"))
	assert.Equal(t, 2, strings.Count(s, ") Tj"))
	assert.Contains(t, s, "/Size 6")
	assert.Contains(t, s, "/MediaBox [0 0 257.95 155.91]")
}

func TestPDFCustomSize(t *testing.T) {
	out, err := NewService().PDF(NewPDFRequest(card.Fields{Name: "A"}, 100, 50))
	require.NoError(t, err)
	assert.Contains(t, string(out), "/MediaBox [0 0 283.46 141.73]")
}

func TestPDFInvalidSize(t *testing.T) {
	_, err := NewService().PDF(NewPDFRequest(card.Fields{Name: "A"}, -5, math.Inf(1)))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestIDML(t *testing.T) {
	var req IDMLRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"card_fields": {"company":"Acme","name":"Jane"},
		"layout": {"width_mm":91,"height_mm":55,"elements":[
			{"fieldKey":"company","text":"Old","x_mm":5,"y_mm":8,"width_mm":40,"height_mm":5,"fontSize_pt":9}
		],"images":[]}
	}`), &req))

	out, err := NewService().IDML(req)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"mimetype",
		"designmap.xml",
		"Resources/Preferences.xml",
		"Spreads/Spread_u1.xml",
		"Stories/Story_0.xml",
		"Stories/Story_main.xml",
		"META-INF/container.xml",
	}, names)
}

func TestIDMLDefaultLayout(t *testing.T) {
	out, err := NewService().IDML(IDMLRequest{CardFields: card.Fields{Company: "Acme", Name: "Jane"}})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)
	assert.Len(t, zr.File, 8)
}

func TestDecodePDFRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    card.Fields
		wantW   float64
		wantErr bool
	}{
		{
			name: "strings",
			body: `{"result":{"card_fields":{"company":"Acme","name":"Taro"}},"width_mm":100}`,
			want: card.Fields{Company: "Acme", Name: "Taro"}, wantW: 100,
		},
		{
			name: "numeric phone",
			body: `{"result":{"card_fields":{"name":"Taro","phone":312345678}}}`,
			want: card.Fields{Name: "Taro", Phone: "312345678"},
		},
		{
			name: "unknown keys dropped",
			body: `{"result":{"card_fields":{"name":"Taro","fax":"1"}}}`,
			want: card.Fields{Name: "Taro"},
		},
		{name: "malformed", body: `{"result":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodePDFRequest([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Result.CardFields)
			assert.Equal(t, tt.wantW, req.WidthMM)
		})
	}
}

func TestDecodeIDMLRequestDefaultsElementSize(t *testing.T) {
	req, err := DecodeIDMLRequest([]byte(`{
		"card_fields": {"company": "Acme", "phone": 31234},
		"layout": {"elements": [{"fieldKey": "company", "x_mm": 5, "y_mm": 8}]}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "31234", req.CardFields.Phone)
	require.NotNil(t, req.Layout)
	require.Len(t, req.Layout.Elements, 1)
	el := req.Layout.Elements[0]
	assert.Equal(t, 40.0, el.WidthMM)
	assert.Equal(t, 5.0, el.HeightMM)
	assert.Equal(t, 91.0, req.Layout.WidthMM)

	req, err = DecodeIDMLRequest([]byte(`{"card_fields":{"name":"Taro"}}`))
	require.NoError(t, err)
	assert.Nil(t, req.Layout)
}
