package animix

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ClipData is the serialized form of a Clip, shared by the JSON and YAML
// loaders.
type ClipData struct {
	ID       string      `json:"id,omitempty" yaml:"id,omitempty" validate:"omitempty,uuid"`
	Name     string      `json:"name" yaml:"name"`
	Duration *float64    `json:"duration,omitempty" yaml:"duration,omitempty" validate:"omitempty,gte=0"`
	Tracks   []TrackData `json:"tracks" yaml:"tracks" validate:"dive"`
}

// TrackData is the serialized form of a Track. A zero Stride is inferred from
// len(Values)/len(Times).
type TrackData struct {
	Path          string        `json:"path" yaml:"path" validate:"required"`
	Times         []float64     `json:"times" yaml:"times" validate:"required,min=1"`
	Values        []float64     `json:"values" yaml:"values" validate:"required,min=1"`
	Stride        int           `json:"stride,omitempty" yaml:"stride,omitempty" validate:"gte=0"`
	Interpolation Interpolation `json:"interpolation,omitempty" yaml:"interpolation,omitempty"`
}

// dataValidate checks clip documents before any track is built.
var dataValidate *validator.Validate

func init() {
	dataValidate = validator.New()
}

// ValidateStruct runs the package's struct validator over v. It is exported
// so other packages of this module validate their documents the same way.
func ValidateStruct(v any) error {
	return dataValidate.Struct(v)
}

// NewClipFromData validates the document and builds the clip. An empty ID
// generates a fresh one.
func NewClipFromData(data ClipData) (*Clip, error) {
	if err := dataValidate.Struct(data); err != nil {
		return nil, fmt.Errorf("invalid clip %q: %w", data.Name, err)
	}

	id := uuid.New()
	if data.ID != "" {
		parsed, err := uuid.Parse(data.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid clip %q: %w", data.Name, err)
		}
		id = parsed
	}

	tracks := make([]*Track, 0, len(data.Tracks))
	for _, td := range data.Tracks {
		stride := td.Stride
		if stride == 0 && len(td.Times) > 0 && len(td.Values)%len(td.Times) == 0 {
			stride = len(td.Values) / len(td.Times)
		}
		t, err := NewTrack(td.Path, td.Times, td.Values, stride, td.Interpolation)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}

	duration := -1.0
	if data.Duration != nil {
		duration = *data.Duration
	}
	return newClip(id, data.Name, duration, tracks)
}

// Data returns the serializable form of the clip.
func (c *Clip) Data() ClipData {
	d := c.duration
	data := ClipData{
		ID:       c.id.String(),
		Name:     c.name,
		Duration: &d,
		Tracks:   make([]TrackData, len(c.tracks)),
	}
	for i, t := range c.tracks {
		data.Tracks[i] = TrackData{
			Path:          t.path,
			Times:         append([]float64(nil), t.times...),
			Values:        append([]float64(nil), t.values...),
			Stride:        t.stride,
			Interpolation: t.interp,
		}
	}
	return data
}

// MarshalJSON implements json.Marshaler.
func (c *Clip) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Data())
}

// MarshalYAML implements yaml.Marshaler.
func (c *Clip) MarshalYAML() (any, error) {
	return c.Data(), nil
}

// LoadClip parses a JSON clip document.
func LoadClip(jsonData []byte) (*Clip, error) {
	var data ClipData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("parse clip json: %w", err)
	}
	return NewClipFromData(data)
}

// LoadClipYAML parses a YAML clip document.
func LoadClipYAML(yamlData []byte) (*Clip, error) {
	var data ClipData
	if err := yaml.Unmarshal(yamlData, &data); err != nil {
		return nil, fmt.Errorf("parse clip yaml: %w", err)
	}
	return NewClipFromData(data)
}
