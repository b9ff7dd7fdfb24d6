package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/sqlmodel/schema/field"
)

// modelFile is the YAML shape of a model definition.
type modelFile struct {
	Name       string `yaml:"name"`
	Table      string `yaml:"table"`
	Attributes []struct {
		Name       string `yaml:"name"`
		Type       string `yaml:"type"`
		Column     string `yaml:"column"`
		ColumnType string `yaml:"columnType"`
		Primary    bool   `yaml:"primary"`
		Length     int    `yaml:"length"`
	} `yaml:"attributes"`
}

// LoadModel reads a model definition from a YAML file:
//
//	name: User
//	attributes:
//	  - name: id
//	    primary: true
//	  - name: fullname
//	    type: string
//	    column: name
//	  - name: created_at
//	    type: date
//	    columnType: timestamp
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	defer f.Close()
	return DecodeModel(f)
}

// DecodeModel decodes a YAML model definition.
func DecodeModel(r io.Reader) (*Model, error) {
	var mf modelFile
	if err := yaml.NewDecoder(r).Decode(&mf); err != nil {
		return nil, fmt.Errorf("schema: decode model: %w", err)
	}
	descs := make([]*field.Descriptor, 0, len(mf.Attributes))
	for _, a := range mf.Attributes {
		t, err := field.ParseType(a.Type)
		if err != nil {
			return nil, fmt.Errorf("schema: model %s: attribute %q: %w", mf.Name, a.Name, err)
		}
		descs = append(descs, &field.Descriptor{
			Name:       a.Name,
			Type:       t,
			Column:     a.Column,
			ColumnType: field.ColumnType(a.ColumnType),
			Primary:    a.Primary,
			Size:       a.Length,
		})
	}
	var opts []Option
	if mf.Table != "" {
		opts = append(opts, Table(mf.Table))
	}
	return newModel(mf.Name, descs, opts...)
}
