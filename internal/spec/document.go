package spec

import (
	"errors"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Document is a parsed OpenAPI or Swagger document.
//
// Model holds the parser backend's typed model. Everything else treats the
// document as an untyped tree of top-level fields.
type Document struct {
	Source  Source
	Version string
	Model   any

	root *yaml.Node
}

// IsSwagger reports whether the document declares Swagger 2.0.
func (d *Document) IsSwagger() bool {
	return strings.HasPrefix(d.Version, "2")
}

// Field returns the value at a dot separated path such as "info.version".
// Scalars are returned as written; mappings and sequences as YAML.
func (d *Document) Field(path string) (string, bool) {
	node := d.lookup(path)
	if node == nil {
		return "", false
	}
	return yamlNodeToString(node), true
}

// Raw decodes the document into maps, slices and scalars. Map keys are
// always strings.
func (d *Document) Raw() (map[string]any, error) {
	if d.root == nil {
		return nil, errors.New("document has no content")
	}
	var raw any
	if err := d.root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	m, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, errors.New("document is not a mapping")
	}
	return m, nil
}

func (d *Document) has(path string) bool {
	node := d.lookup(path)
	return node != nil && node.ShortTag() != "!!null"
}

func (d *Document) lookup(path string) *yaml.Node {
	node := d.root
	if node == nil || path == "" {
		return nil
	}
	for _, key := range strings.Split(path, ".") {
		node = mappingValue(node, key)
		if node == nil {
			return nil
		}
	}
	return node
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			value := node.Content[i+1]
			if value.Kind == yaml.AliasNode {
				return value.Alias
			}
			return value
		}
	}
	return nil
}

// decode reads the top level of data and its declared version. It does
// not interpret anything below the top level.
func decode(src Source, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, parseError(src, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, parseError(src, errors.New("document is empty"))
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, parseError(src, fmt.Errorf("top level is not a mapping (line %d)", top.Line))
	}

	doc := &Document{Source: src, root: top}
	for _, key := range []string{"openapi", "swagger"} {
		if value := mappingValue(top, key); value != nil && value.Kind == yaml.ScalarNode && value.ShortTag() != "!!null" {
			doc.Version = strings.TrimSpace(value.Value)
			break
		}
	}
	if doc.Version == "" {
		return nil, parseError(src, errors.New("missing openapi or swagger version field"))
	}
	return doc, nil
}

func yamlNodeToString(node *yaml.Node) string {
	if node == nil {
		return ""
	}
	if node.Kind == yaml.ScalarNode {
		return node.Value
	}
	data, err := yaml.Marshal(node)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// normalize rewrites non-string map keys, e.g. unquoted status codes, so
// the tree can be encoded as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	default:
		return v
	}
}
