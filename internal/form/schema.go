// Package form holds the published work report form and validates report
// data against it.
package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/poolforyou/poolforyou-api/internal/model"
)

// FieldType is the JSON type a form answer must have.
type FieldType string

const (
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeText    FieldType = "text"
)

// Field describes one answer of the form.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// Schema is one version of the work report form.
type Schema struct {
	Version string  `json:"version"`
	Fields  []Field `json:"fields"`
}

// WorkReportV1 is the form published with the first release.
var WorkReportV1 = Schema{
	Version: "1.0",
	Fields: []Field{
		{Name: "ph_level", Label: "Nivel de pH", Type: TypeNumber, Required: true},
		{Name: "chlorine_level", Label: "Nivel de cloro", Type: TypeNumber, Required: true},
		{Name: "cleaned_filters", Label: "Filtros limpiados", Type: TypeBoolean, Required: true},
		{Name: "observations", Label: "Observaciones", Type: TypeText, Required: false},
	},
}

// Problems maps a field name to what is wrong with it.
type Problems map[string]string

// Validate checks required answers are present and declared answers have the
// declared type.  Fields the schema does not know are accepted untouched.
func (s Schema) Validate(d model.ReportData) Problems {
	p := Problems{}
	if len(d.Photos) > 0 {
		p[model.PhotosKey] = "photos are added through uploads"
	}
	for _, f := range s.Fields {
		if !d.Has(f.Name) {
			if f.Required {
				p[f.Name] = "required"
			}
			continue
		}
		if !f.Type.matches(d.Fields[f.Name]) {
			p[f.Name] = fmt.Sprintf("must be %s", f.Type)
		}
	}
	if len(p) == 0 {
		return nil
	}
	return p
}

func (t FieldType) matches(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch t {
	case TypeNumber:
		var n json.Number
		return raw[0] != '"' && json.Unmarshal(raw, &n) == nil
	case TypeBoolean:
		var b bool
		return json.Unmarshal(raw, &b) == nil
	case TypeText:
		var s string
		return json.Unmarshal(raw, &s) == nil
	}
	return false
}

// ErrUnknownVersion is returned when a schema version was never registered.
var ErrUnknownVersion = errors.New("unknown form version")

// Registry keeps every registered form version with exactly one active.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]Schema
	active  string
}

// NewRegistry registers the given schema and makes it active.
func NewRegistry(active Schema) *Registry {
	return &Registry{
		schemas: map[string]Schema{active.Version: active},
		active:  active.Version,
	}
}

// Active returns the schema new reports are validated against.
func (r *Registry) Active() Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schemas[r.active]
}

// Get returns a registered version.
func (r *Registry) Get(version string) (Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[version]
	return s, ok
}

// Register adds or replaces a version without activating it.
func (r *Registry) Register(s Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Version] = s
}

// Activate switches the active version.
func (r *Registry) Activate(version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[version]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVersion, version)
	}
	r.active = version
	return nil
}
