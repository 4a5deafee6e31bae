// Package document models the remote configuration document: a nested
// mapping holding an analysis entity list and a resource list, in one of
// two container layouts and one of two glossary resource encodings. The
// shape is detected once at entry and threaded through explicitly so
// callers never re-detect it ad hoc.
package document

// Document is the configuration object as fetched from the remote store.
type Document map[string]any

// Container keys shared by both layouts.
const (
	KeyData         = "data"
	KeyEntityList   = "analysisEntityList"
	KeyResourceList = "resourceList"
)

// Layout identifies where the entity and resource lists live.
type Layout int

const (
	// LayoutTopLevel keeps analysisEntityList and resourceList at the
	// document root.
	LayoutTopLevel Layout = iota
	// LayoutNestedData nests both lists one level under a "data" key.
	LayoutNestedData
)

// String implements fmt.Stringer.
func (l Layout) String() string {
	if l == LayoutNestedData {
		return "nested-data"
	}
	return "top-level"
}

// Encoding identifies how glossary terms are stored in the resource list.
type Encoding int

const (
	// EncodingFlat stores one {id, phrase, definition} resource per term.
	EncodingFlat Encoding = iota
	// EncodingBundle stores all terms inside a single resource carrying a
	// "glossary" list.
	EncodingBundle
)

// String implements fmt.Stringer.
func (e Encoding) String() string {
	if e == EncodingBundle {
		return "bundle"
	}
	return "flat"
}

// Shape is the detected union of layout and encoding for one document.
type Shape struct {
	Layout   Layout
	Encoding Encoding
}

// String implements fmt.Stringer.
func (s Shape) String() string {
	return s.Layout.String() + "/" + s.Encoding.String()
}

// Detect inspects a document once and returns its shape. The layout is
// nested when a "data" mapping carries either list. The encoding follows
// whatever glossary resources already exist: a resource holding a
// "glossary" list means bundle, a resource holding phrase and definition
// fields means flat. Documents with no glossary resources yet default to
// the encoding observed alongside each layout in practice: flat for
// nested documents, bundle for top-level ones.
func Detect(doc Document) Shape {
	shape := Shape{Layout: LayoutTopLevel, Encoding: EncodingBundle}

	if data, ok := doc[KeyData].(map[string]any); ok {
		if _, hasEntities := data[KeyEntityList]; hasEntities {
			shape.Layout = LayoutNestedData
		} else if _, hasResources := data[KeyResourceList]; hasResources {
			shape.Layout = LayoutNestedData
		}
	}
	if shape.Layout == LayoutNestedData {
		shape.Encoding = EncodingFlat
	}

	for _, raw := range Resources(doc, shape) {
		resource, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := resource["glossary"].([]any); ok {
			shape.Encoding = EncodingBundle
			break
		}
		_, hasPhrase := resource["phrase"]
		_, hasDefinition := resource["definition"]
		if hasPhrase && hasDefinition {
			shape.Encoding = EncodingFlat
			break
		}
	}

	return shape
}

// container returns the mapping that holds the entity and resource lists
// for the given layout. For the nested layout the "data" mapping is
// created on demand so writes always have somewhere to land.
func container(doc Document, layout Layout, create bool) map[string]any {
	if layout == LayoutTopLevel {
		return doc
	}
	if data, ok := doc[KeyData].(map[string]any); ok {
		return data
	}
	if !create {
		return nil
	}
	data := map[string]any{}
	doc[KeyData] = data
	return data
}

// Entities returns the entity list for the given shape, or nil when the
// list is absent or not a list.
func Entities(doc Document, shape Shape) []any {
	c := container(doc, shape.Layout, false)
	if c == nil {
		return nil
	}
	list, _ := c[KeyEntityList].([]any)
	return list
}

// Resources returns the resource list for the given shape, or nil when
// the list is absent or not a list.
func Resources(doc Document, shape Shape) []any {
	c := container(doc, shape.Layout, false)
	if c == nil {
		return nil
	}
	list, _ := c[KeyResourceList].([]any)
	return list
}

// SetEntities replaces the entity list, creating the container if needed.
func SetEntities(doc Document, shape Shape, entities []any) {
	container(doc, shape.Layout, true)[KeyEntityList] = entities
}

// SetResources replaces the resource list, creating the container if
// needed.
func SetResources(doc Document, shape Shape, resources []any) {
	container(doc, shape.Layout, true)[KeyResourceList] = resources
}

// DeepCopy returns a copy of the document sharing no mutable state with
// the original. Values are the JSON-ish types produced by decoding the
// remote payload: maps, slices, and scalars.
func DeepCopy(doc Document) Document {
	return copyValue(map[string]any(doc)).(map[string]any)
}

func copyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
