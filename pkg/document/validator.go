package document

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/agentstation/glossync/pkg/errors"
)

// Validator checks a configuration document and reports every problem
// found. Implementations never mutate the document.
type Validator interface {
	Validate(doc Document) (bool, []string)
}

// StructuralValidator performs hand-rolled shape checks: required
// containers present with the right types, entity and resource ids
// present and unique, and every entity resource reference resolvable.
type StructuralValidator struct {
	shape Shape
}

// NewStructuralValidator returns a validator for documents of the given
// shape.
func NewStructuralValidator(shape Shape) *StructuralValidator {
	return &StructuralValidator{shape: shape}
}

// Validate implements Validator.
func (v *StructuralValidator) Validate(doc Document) (bool, []string) {
	if doc == nil {
		return false, []string{"document must be a mapping"}
	}

	var errs []string

	c := container(doc, v.shape.Layout, false)
	if c == nil {
		errs = append(errs, fmt.Sprintf("missing %q container", KeyData))
		return false, errs
	}

	entities, ok := checkList(c, KeyEntityList, &errs)
	if ok {
		v.checkEntities(entities, &errs)
	}
	resources, ok := checkList(c, KeyResourceList, &errs)
	if ok {
		v.checkResources(resources, &errs)
	}
	if len(entities) > 0 && len(errs) == 0 {
		v.checkReferences(entities, resources, &errs)
	}

	return len(errs) == 0, errs
}

func checkList(c map[string]any, key string, errs *[]string) ([]any, bool) {
	raw, present := c[key]
	if !present {
		*errs = append(*errs, fmt.Sprintf("missing %q list", key))
		return nil, false
	}
	list, ok := raw.([]any)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%q must be a list, got %T", key, raw))
		return nil, false
	}
	return list, true
}

func (v *StructuralValidator) checkEntities(entities []any, errs *[]string) {
	seen := map[string]bool{}
	for i, raw := range entities {
		entity, ok := raw.(map[string]any)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("entity %d must be a mapping, got %T", i, raw))
			continue
		}
		id, _ := entity["id"].(string)
		if id == "" {
			*errs = append(*errs, fmt.Sprintf("entity %d missing id", i))
			continue
		}
		if seen[id] {
			*errs = append(*errs, fmt.Sprintf("duplicate entity id %q", id))
		}
		seen[id] = true
	}
}

func (v *StructuralValidator) checkResources(resources []any, errs *[]string) {
	seen := map[string]bool{}
	for i, raw := range resources {
		resource, ok := raw.(map[string]any)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("resource %d must be a mapping, got %T", i, raw))
			continue
		}
		id, _ := resource["id"].(string)
		if id == "" {
			*errs = append(*errs, fmt.Sprintf("resource %d missing id", i))
			continue
		}
		if seen[id] {
			*errs = append(*errs, fmt.Sprintf("duplicate resource id %q", id))
		}
		seen[id] = true
	}
}

func (v *StructuralValidator) checkReferences(entities, resources []any, errs *[]string) {
	known := map[string]bool{}
	for _, raw := range resources {
		if resource, ok := raw.(map[string]any); ok {
			if id, ok := resource["id"].(string); ok {
				known[id] = true
			}
		}
	}

	for _, raw := range entities {
		entity, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		refs, ok := entity["resources"].([]any)
		if !ok {
			continue
		}
		entityID, _ := entity["id"].(string)
		for _, ref := range refs {
			id, _ := ref.(string)
			if !known[id] {
				*errs = append(*errs, fmt.Sprintf("entity %q references missing resource %q", entityID, id))
			}
		}
	}
}

// SchemaValidator validates documents against a formal JSON Schema
// supplied by the caller. It satisfies the same contract as the
// structural validator so consumers stay agnostic to the backend.
type SchemaValidator struct {
	resolved *jsonschema.Resolved
}

// NewSchemaValidator parses and resolves the given JSON Schema document.
func NewSchemaValidator(schemaJSON []byte) (*SchemaValidator, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return nil, errors.WrapParse("json", "schema", err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, errors.WrapParse("jsonschema", "schema", err)
	}
	return &SchemaValidator{resolved: resolved}, nil
}

// Validate implements Validator.
func (v *SchemaValidator) Validate(doc Document) (bool, []string) {
	if doc == nil {
		return false, []string{"document must be a mapping"}
	}
	if err := v.resolved.Validate(map[string]any(doc)); err != nil {
		return false, []string{err.Error()}
	}
	return true, nil
}
