// Package document holds the structured project/organisation/platform
// document that both the wiki pages and the archived YAML file are
// renderings of, together with the deep-merge used by every partial
// update flow.
package document

import (
	"encoding/base64"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is a structured document: fixed top-level keys ("project",
// "organisation", "organiser", ...), each a mapping of field name to a
// scalar, a list, or a nested mapping.
type Document map[string]any

// ErrNotFound is returned when the base document cannot be retrieved from
// the remote store. Update flows always fetch before merging; create flows
// never fetch.
var ErrNotFound = errors.New("document: not found")

// Merge deep-merges partial into base and returns a fresh document,
// leaving base untouched. Scalars overwrite field-level, lists replace
// wholesale (never concatenate, so merging twice equals merging once), and
// nested mappings recurse. Keys absent from partial keep base's value.
func Merge(base, partial Document) Document {
	merged := make(Document, len(base)+len(partial))
	for k, v := range base {
		merged[k] = copyValue(v)
	}
	for k, v := range partial {
		if baseVal, ok := merged[k]; ok {
			merged[k] = mergeValue(baseVal, v)
		} else {
			merged[k] = copyValue(v)
		}
	}
	return merged
}

func mergeValue(base, partial any) any {
	partialMap, pOK := asMap(partial)
	baseMap, bOK := asMap(base)
	if !pOK || !bOK {
		// Lists and scalars replace; a shape change replaces too.
		return copyValue(partial)
	}
	merged := make(map[string]any, len(baseMap)+len(partialMap))
	for k, v := range baseMap {
		merged[k] = copyValue(v)
	}
	for k, v := range partialMap {
		if bv, ok := merged[k]; ok {
			merged[k] = mergeValue(bv, v)
		} else {
			merged[k] = copyValue(v)
		}
	}
	return merged
}

// asMap normalizes the two map shapes the YAML and JSON decoders produce.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	default:
		return nil, false
	}
}

// copyValue clones maps and slices so merged documents never alias their
// inputs. Scalars are returned as-is.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = copyValue(e)
		}
		return out
	case Document:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = copyValue(e)
		}
		return out
	default:
		return val
	}
}

// MarshalYAML serializes the document as YAML.
func MarshalYAML(doc Document) ([]byte, error) {
	out, err := yaml.Marshal(map[string]any(doc))
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return out, nil
}

// UnmarshalYAML parses a YAML document.
func UnmarshalYAML(data []byte) (Document, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return Document(doc), nil
}

// EncodeBase64YAML serializes the document as YAML wrapped in base64, the
// shape the git contents APIs exchange file bodies in.
func EncodeBase64YAML(doc Document) (string, error) {
	raw, err := MarshalYAML(doc)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeBase64YAML parses a base64-wrapped YAML document.
func DecodeBase64YAML(encoded string) (Document, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode document content: %w", err)
	}
	return UnmarshalYAML(raw)
}

// String returns the value of a string field under a top-level key, or ""
// when absent. Rendering code uses it to pull named fields without
// repeating type assertions.
func (d Document) String(key, field string) string {
	section, ok := asMap(d[key])
	if !ok {
		return ""
	}
	s, _ := section[field].(string)
	return s
}

// Section returns the mapping under a top-level key, or nil when absent.
func (d Document) Section(key string) map[string]any {
	section, _ := asMap(d[key])
	return section
}

// List returns the list value of a field under a top-level key.
func (d Document) List(key, field string) []any {
	section, ok := asMap(d[key])
	if !ok {
		return nil
	}
	list, _ := section[field].([]any)
	return list
}
