package harness

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed scenario.cue
var schemaSource string

var (
	schemaOnce  sync.Once
	schemaValue cue.Value
	schemaErr   error
)

// scenarioSchema compiles the embedded schema once and caches it.
func scenarioSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(schemaSource, cue.Filename("scenario.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compiling scenario schema: %w", err)
			return
		}
		schemaValue = v.LookupPath(cue.ParsePath("#Scenario"))
		if err := schemaValue.Err(); err != nil {
			schemaErr = fmt.Errorf("looking up #Scenario: %w", err)
		}
	})
	return schemaValue, schemaErr
}

// ValidateSchema unifies a raw scenario document with the embedded CUE
// schema. Structural mistakes (wrong types, missing required fields,
// unknown step operations) are reported with CUE's path-qualified errors
// before any step executes.
func ValidateSchema(data []byte) error {
	schema, err := scenarioSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	ctx := schema.Context()
	unified := schema.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema violation: %w", err)
	}
	return nil
}
