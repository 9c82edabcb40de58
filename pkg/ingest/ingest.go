// Package ingest parses upstream validator reports into the issue model the
// resolution engine consumes. EPUBCheck reports carry structural validation
// findings, ACE reports carry accessibility audit findings; both are shape
// checked against an embedded JSON schema before decoding.
package ingest

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// CodeSet classifies which issue codes a registered strategy can repair.
// Build one from the engine's HandledCodes.
type CodeSet map[string]struct{}

// NewCodeSet builds a CodeSet from a list of handled codes.
func NewCodeSet(codes ...string) CodeSet {
	s := make(CodeSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Contains reports whether the set covers code.
func (s CodeSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// validateShape checks raw report bytes against an embedded schema. The
// schemas pin only the fields the decoders read, so validator versions that
// add fields still pass.
func validateShape(data []byte, name, schemaJSON string) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(schemaJSON)))
	if err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	sch, err := c.Compile(name)
	if err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("report is not valid JSON: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("report shape: %w", err)
	}
	return nil
}
