package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockTerminal/internal/model"
)

func sampleInfo() *model.CompanyInfo {
	return &model.CompanyInfo{
		Symbol:       "AAPL",
		LongName:     "Apple Inc.",
		Sector:       "Technology",
		MarketCap:    3_000_000_000_000,
		CurrentPrice: 189.5,
		Extra: []model.Field{
			{Key: "tags", Value: []string{"a", "b"}},
			{Key: "broken", Value: make(chan int)},
		},
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(zap.NewNop()).CSV(&buf, sampleInfo()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"index", "Value"},
		{"symbol", "AAPL"},
		{"longName", "Apple Inc."},
		{"sector", "Technology"},
		{"marketCap", "3000000000000"},
		{"currentPrice", "189.5"},
		{"tags", `["a","b"]`},
	}, rows)
}

func TestCSV_QuotesCommas(t *testing.T) {
	info := &model.CompanyInfo{Symbol: "X", LongName: "Foo, Bar & Co"}
	var buf bytes.Buffer
	require.NoError(t, New(zap.NewNop()).CSV(&buf, info))
	assert.Contains(t, buf.String(), `longName,"Foo, Bar & Co"`)
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(zap.NewNop()).PDF(&buf, sampleInfo()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDF_SkipsUnencodableField(t *testing.T) {
	info := &model.CompanyInfo{
		Symbol:      "9988.HK",
		LongName:    "Alibaba Group",
		Description: "阿里巴巴集团",
	}
	var buf bytes.Buffer
	require.NoError(t, New(zap.NewNop()).PDF(&buf, info))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"int64", int64(42), "42"},
		{"float", 1.25, "1.25"},
		{"bool", true, "true"},
		{"metric", model.Percent(3.5), "3.50"},
		{"map", map[string]int{"a": 1}, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := formatValue(func() {})
	assert.Error(t, err)
}
