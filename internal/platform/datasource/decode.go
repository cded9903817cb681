package datasource

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a bulk file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file name or object key extension.
// Anything that is not .yaml or .yml is read as JSON.
func FormatOf(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type jsonDocument struct {
	Persons        []json.RawMessage `json:"persons"`
	FireStations   []json.RawMessage `json:"firestations"`
	MedicalRecords []json.RawMessage `json:"medicalrecords"`
}

type yamlDocument struct {
	Persons        []yaml.Node `yaml:"persons"`
	FireStations   []yaml.Node `yaml:"firestations"`
	MedicalRecords []yaml.Node `yaml:"medicalrecords"`
}

// Decode parses a bulk document. A document that is not a valid object at
// the top level fails as a whole; individual bad records are reported in
// Dataset.Problems.
func Decode(data []byte, format Format) (*Dataset, error) {
	switch format {
	case FormatYAML:
		var doc yamlDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return newDataset(yamlRecords(doc.Persons), yamlRecords(doc.FireStations), yamlRecords(doc.MedicalRecords)), nil
	case FormatJSON:
		var doc jsonDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return newDataset(jsonRecords(doc.Persons), jsonRecords(doc.FireStations), jsonRecords(doc.MedicalRecords)), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func jsonRecords(raws []json.RawMessage) []rawRecord {
	out := make([]rawRecord, len(raws))
	for i, raw := range raws {
		out[i] = func(v any) error { return json.Unmarshal(raw, v) }
	}
	return out
}

func yamlRecords(nodes []yaml.Node) []rawRecord {
	out := make([]rawRecord, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		out[i] = func(v any) error { return node.Decode(v) }
	}
	return out
}
