package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolforyou/poolforyou-api/internal/model"
)

func TestReportDataPreservesUnknownFields(t *testing.T) {
	in := `{"ph_level":7.2,"chlorine_level":1.5,"cleaned_filters":true,` +
		`"pump_noise":{"db":42,"note":"ok"},"photos":["uploads/work_reports/1/a.jpg"]}`

	var d model.ReportData
	require.NoError(t, json.Unmarshal([]byte(in), &d))

	assert.Equal(t, []string{"uploads/work_reports/1/a.jpg"}, d.Photos)
	assert.NotContains(t, d.Fields, model.PhotosKey)
	assert.JSONEq(t, `{"db":42,"note":"ok"}`, string(d.Fields["pump_noise"]))

	ph, ok := d.Number("ph_level")
	assert.True(t, ok)
	assert.Equal(t, 7.2, ph)
	cleaned, ok := d.Bool("cleaned_filters")
	assert.True(t, ok)
	assert.True(t, cleaned)
	_, ok = d.Text("observations")
	assert.False(t, ok)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestReportDataOmitsEmptyPhotos(t *testing.T) {
	d := model.ReportData{Fields: map[string]json.RawMessage{"ph_level": json.RawMessage(`7`)}}
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ph_level":7}`, string(out))
}

func TestReportDataRejectsMalformedPhotos(t *testing.T) {
	var d model.ReportData
	err := json.Unmarshal([]byte(`{"photos":"one.jpg"}`), &d)
	assert.Error(t, err)
}

func TestParseDateRange(t *testing.T) {
	from, before, err := model.ParseDateRange("2024-01-01", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), before)

	from, before, err = model.ParseDateRange("", "")
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, before.IsZero())

	_, _, err = model.ParseDateRange("01/01/2024", "")
	assert.Error(t, err)
	_, _, err = model.ParseDateRange("", "2024-13-01")
	assert.Error(t, err)
}
