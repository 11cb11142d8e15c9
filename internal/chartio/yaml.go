package chartio

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/beatline/internal/chart"
)

// DecodeYAML reads a YAML chart document. Unknown fields are rejected.
func DecodeYAML(r io.Reader) (*chart.Chart, error) {
	var doc Document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	c, err := Build(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid chart: %w", err)
	}
	return c, nil
}

// EncodeYAML writes c as a YAML chart document.
func EncodeYAML(w io.Writer, c *chart.Chart) error {
	doc, err := FromChart(c)
	if err != nil {
		return err
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
