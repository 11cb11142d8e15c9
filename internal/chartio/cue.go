package chartio

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/beatline/internal/chart"
)

//go:embed schema.cue
var schemaSource []byte

// DecodeError is a chart decoding failure with its source position, when
// the decoder knows it.
type DecodeError struct {
	Format  string
	Message string
	Pos     token.Pos
}

func (e *DecodeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Format, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Message)
}

// DecodeCUE compiles a CUE chart document, unifies it with the #Chart
// schema, and builds the chart. filename is used in error positions.
func DecodeCUE(data []byte, filename string) (*chart.Chart, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("chart schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, filename)
	}

	v = schema.LookupPath(cue.ParsePath("#Chart")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, filename)
	}

	var doc Document
	if err := v.Decode(&doc); err != nil {
		return nil, formatCUEError(err, filename)
	}
	c, err := Build(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid chart: %w", err)
	}
	return c, nil
}

// formatCUEError keeps the first error, preferring a position inside the
// document over one inside the schema.
func formatCUEError(err error, filename string) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) == 0 {
		return &DecodeError{Format: "cue", Message: first.Error()}
	}
	pos := positions[0]
	for _, p := range positions {
		if p.Filename() == filename {
			pos = p
			break
		}
	}
	return &DecodeError{Format: "cue", Message: first.Error(), Pos: pos}
}
