// Package generator renders TypeScript type declarations from the schemas
// of a parsed OpenAPI 3 document.
package generator

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/template"

	base "github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"go.yaml.in/yaml/v4"

	"github.com/sumup/specload/internal/naming"
	"github.com/sumup/specload/internal/spec"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ErrUnsupportedModel is returned for documents not parsed into a
// libopenapi v3 model.
var ErrUnsupportedModel = errors.New("typescript types need an OpenAPI 3 document parsed by libopenapi")

const unknownType = "unknown"

type declarationTemplateData struct {
	Name     string
	Type     string
	Alias    bool
	Optional bool
}

type typesTemplateData struct {
	Source       string
	Declarations []string
}

// Config holds runtime settings for the generator.
type Config struct {
	// Indent is repeated once per nesting level. Defaults to a tab.
	Indent string
}

// Generator renders one TypeScript type alias per component schema.
type Generator struct {
	config Config
	tmpl   *template.Template
}

// New returns a new Generator.
func New(config Config) (*Generator, error) {
	if config.Indent == "" {
		config.Indent = "\t"
	}
	tmpl, err := template.New("types").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Generator{config: config, tmpl: tmpl}, nil
}

// Run writes the declarations for doc to w, in document order.
func (g *Generator) Run(doc *spec.Document, w io.Writer) error {
	if doc == nil {
		return errors.New("generate: no document")
	}
	model, ok := doc.Model.(*v3.Document)
	if !ok {
		return fmt.Errorf("generate: %w (got %T)", ErrUnsupportedModel, doc.Model)
	}

	var declarations []string
	if model.Components != nil && model.Components.Schemas != nil {
		for name, proxy := range model.Components.Schemas.FromOldest() {
			declaration, err := g.declaration(name, proxy, declarationTemplateData{Alias: true}, 1)
			if err != nil {
				return err
			}
			declarations = append(declarations, declaration)
		}
	}

	data := typesTemplateData{Source: doc.Source.String(), Declarations: declarations}
	if err := g.tmpl.ExecuteTemplate(w, "types.tmpl", data); err != nil {
		return fmt.Errorf("render types: %w", err)
	}
	return nil
}

// declaration renders `type Name = T;` for aliases and `name?: T;` for
// properties. depth is the nesting level of the object literal a
// property body would open.
func (g *Generator) declaration(name string, proxy *base.SchemaProxy, data declarationTemplateData, depth int) (string, error) {
	if data.Alias {
		data.Name = naming.TypeName(name)
	} else {
		data.Name = naming.PropertyName(name)
	}

	typ, err := g.typeExpr(proxy, depth)
	if err != nil {
		return "", err
	}
	data.Type = typ

	var builder strings.Builder
	if err := g.tmpl.ExecuteTemplate(&builder, "declaration.tmpl", data); err != nil {
		return "", fmt.Errorf("render declaration %s: %w", name, err)
	}
	return builder.String(), nil
}

func (g *Generator) typeExpr(proxy *base.SchemaProxy, depth int) (string, error) {
	if proxy == nil {
		return unknownType, nil
	}
	if proxy.IsReference() {
		return naming.TypeName(componentName(proxy.GetReference())), nil
	}
	schema := proxy.Schema()
	if schema == nil {
		return unknownType, nil
	}

	switch {
	case len(schema.Enum) > 0:
		return enumType(schema.Enum), nil
	case schemaHasType(schema, "string"):
		return "string", nil
	case schemaHasType(schema, "integer"), schemaHasType(schema, "number"):
		return "number", nil
	case schemaHasType(schema, "boolean"):
		return "boolean", nil
	case schemaHasType(schema, "array") || (schema.Items != nil && schema.Items.IsA()):
		return g.arrayType(schema, depth)
	case schemaHasType(schema, "object") || (schema.Properties != nil && schema.Properties.Len() > 0):
		return g.objectType(schema, depth)
	}
	return unknownType, nil
}

func (g *Generator) objectType(schema *base.Schema, depth int) (string, error) {
	if schema.Properties == nil || schema.Properties.Len() == 0 {
		value := unknownType
		if schema.AdditionalProperties != nil && schema.AdditionalProperties.IsA() && schema.AdditionalProperties.A != nil {
			var err error
			if value, err = g.typeExpr(schema.AdditionalProperties.A, depth); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("Record<string, %s>", value), nil
	}

	indent := strings.Repeat(g.config.Indent, depth)
	closing := strings.Repeat(g.config.Indent, depth-1)

	properties := make([]string, 0, schema.Properties.Len())
	for name, proxy := range schema.Properties.FromOldest() {
		data := declarationTemplateData{Optional: !slices.Contains(schema.Required, name)}
		property, err := g.declaration(name, proxy, data, depth+1)
		if err != nil {
			return "", err
		}
		properties = append(properties, indent+property)
	}

	return fmt.Sprintf("{\n%s\n%s}", strings.Join(properties, "\n"), closing), nil
}

func (g *Generator) arrayType(schema *base.Schema, depth int) (string, error) {
	item := unknownType
	if schema.Items != nil && schema.Items.IsA() {
		var err error
		if item, err = g.typeExpr(schema.Items.A, depth); err != nil {
			return "", err
		}
	}
	if strings.Contains(item, " | ") {
		item = "(" + item + ")"
	}
	return item + "[]", nil
}

// enumType renders enum values as a union of literals.
func enumType(values []*yaml.Node) string {
	literals := make([]string, 0, len(values))
	for _, value := range values {
		if value == nil || value.Kind != yaml.ScalarNode {
			return unknownType
		}
		switch value.ShortTag() {
		case "!!str":
			literals = append(literals, strconv.Quote(value.Value))
		case "!!null":
			literals = append(literals, "null")
		default:
			literals = append(literals, value.Value)
		}
	}
	return strings.Join(literals, " | ")
}

func schemaHasType(schema *base.Schema, target string) bool {
	if schema == nil {
		return false
	}
	for _, t := range schema.Type {
		if strings.EqualFold(t, target) {
			return true
		}
	}
	return false
}

func componentName(ref string) string {
	if ref == "" {
		return ""
	}
	segments := strings.Split(ref, "/")
	return segments[len(segments)-1]
}
