package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// StatusPending is the status every report starts in.  Admins may later set
// any other label (e.g. "aprobado", "rechazado").
const StatusPending = "pendiente"

// PhotosKey is the reserved data key under which stored photo paths live.
const PhotosKey = "photos"

// WorkReport mirrors the `work_reports` table.
type WorkReport struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"user_id"`
	Location  string     `json:"location"`
	Data      ReportData `json:"data"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// ReportData is the form payload of a report.  Fields holds every answer,
// declared by the form schema or not, exactly as received so unknown keys
// survive a round trip.  Photos is the append-only list of stored paths.
// On the wire both are flattened into a single JSON object.
type ReportData struct {
	Fields map[string]json.RawMessage
	Photos []string
}

// MarshalJSON flattens Fields and Photos into one object.
func (d ReportData) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(d.Fields)+1)
	for k, v := range d.Fields {
		out[k] = v
	}
	if len(d.Photos) > 0 {
		b, err := json.Marshal(d.Photos)
		if err != nil {
			return nil, err
		}
		out[PhotosKey] = b
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the photos list out of the object.
func (d *ReportData) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Fields = make(map[string]json.RawMessage, len(raw))
	d.Photos = nil
	for k, v := range raw {
		if k == PhotosKey {
			if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				continue
			}
			if err := json.Unmarshal(v, &d.Photos); err != nil {
				return fmt.Errorf("data.photos: %w", err)
			}
			continue
		}
		d.Fields[k] = v
	}
	return nil
}

// Has reports whether the field is present and not null.
func (d ReportData) Has(name string) bool {
	v, ok := d.Fields[name]
	return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// Number returns a numeric field.
func (d ReportData) Number(name string) (float64, bool) {
	var f float64
	return f, d.decode(name, &f)
}

// Bool returns a boolean field.
func (d ReportData) Bool(name string) (bool, bool) {
	var b bool
	return b, d.decode(name, &b)
}

// Text returns a string field.
func (d ReportData) Text(name string) (string, bool) {
	var s string
	return s, d.decode(name, &s)
}

func (d ReportData) decode(name string, dst any) bool {
	if !d.Has(name) {
		return false
	}
	return json.Unmarshal(d.Fields[name], dst) == nil
}

// ReportFilter narrows the admin listing.  Zero values mean "no filter".
// CreatedBefore is exclusive; a whole-day upper bound is expressed as the
// start of the following day.
type ReportFilter struct {
	Status        string
	UserID        uint64
	CreatedFrom   time.Time
	CreatedBefore time.Time
}

// DateLayout is the accepted format for date_from and date_to.
const DateLayout = "2006-01-02"

// ParseDateRange converts the date_from / date_to query values into the
// filter bounds.  date_to matches its whole day.
func ParseDateRange(from, to string) (time.Time, time.Time, error) {
	var start, before time.Time
	if from != "" {
		t, err := time.ParseInLocation(DateLayout, from, time.UTC)
		if err != nil {
			return start, before, fmt.Errorf("date_from: %w", err)
		}
		start = t
	}
	if to != "" {
		t, err := time.ParseInLocation(DateLayout, to, time.UTC)
		if err != nil {
			return start, before, fmt.Errorf("date_to: %w", err)
		}
		before = t.AddDate(0, 0, 1)
	}
	return start, before, nil
}
