package spec

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
)

type kinParser struct {
	reader *Reader
	strict bool
}

func newKinParser(opts Options) Parser {
	return &kinParser{
		reader: NewReader(opts.Client),
		strict: opts.Strict,
	}
}

func (p *kinParser) Parse(ctx context.Context, src Source) (*Document, error) {
	data, err := p.reader.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	doc, err := decode(src, data)
	if err != nil {
		return nil, err
	}

	var model *openapi3.T
	if doc.IsSwagger() {
		model, err = p.loadV2(doc)
	} else {
		model, err = p.loadV3(ctx, src, data)
	}
	if err != nil {
		return nil, err
	}

	if p.strict {
		if err := model.Validate(ctx); err != nil {
			return nil, parseError(src, fmt.Errorf("validate: %w", err))
		}
	}
	doc.Model = model
	return doc, nil
}

func (p *kinParser) loadV3(ctx context.Context, src Source, data []byte) (*openapi3.T, error) {
	location, err := src.URL()
	if err != nil {
		return nil, &Error{Kind: ErrIO, Source: src, Err: err}
	}
	loader := &openapi3.Loader{
		IsExternalRefsAllowed: true,
		Context:               ctx,
		ReadFromURIFunc: func(_ *openapi3.Loader, ref *url.URL) ([]byte, error) {
			return p.reader.readURL(ctx, Source(ref.String()), ref)
		},
	}
	model, err := loader.LoadFromDataWithPath(data, location)
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(src, ctx.Err())
		}
		return nil, parseError(src, fmt.Errorf("load spec: %w", err))
	}
	return model, nil
}

// loadV2 decodes a Swagger 2.0 document and converts it to OpenAPI 3.
func (p *kinParser) loadV2(doc *Document) (*openapi3.T, error) {
	raw, err := doc.Raw()
	if err != nil {
		return nil, parseError(doc.Source, err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, parseError(doc.Source, fmt.Errorf("encode swagger: %w", err))
	}
	var swagger openapi2.T
	if err := json.Unmarshal(data, &swagger); err != nil {
		return nil, parseError(doc.Source, fmt.Errorf("decode swagger: %w", err))
	}
	model, err := openapi2conv.ToV3(&swagger)
	if err != nil {
		return nil, parseError(doc.Source, fmt.Errorf("convert swagger: %w", err))
	}
	return model, nil
}
