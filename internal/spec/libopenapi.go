package spec

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
)

type libopenapiParser struct {
	reader *Reader
	strict bool
	logger *slog.Logger
}

func newLibopenapiParser(opts Options) Parser {
	return &libopenapiParser{
		reader: NewReader(opts.Client),
		strict: opts.Strict,
		logger: opts.Logger,
	}
}

func (p *libopenapiParser) Parse(ctx context.Context, src Source) (*Document, error) {
	data, err := p.reader.Read(ctx, src)
	if err != nil {
		return nil, err
	}
	doc, err := decode(src, data)
	if err != nil {
		return nil, err
	}

	config, err := p.configuration(src)
	if err != nil {
		return nil, &Error{Kind: ErrIO, Source: src, Err: err}
	}
	parsed, err := libopenapi.NewDocumentWithConfiguration(data, config)
	if err != nil {
		return nil, parseError(src, fmt.Errorf("create document: %w", err))
	}

	if doc.IsSwagger() {
		model, err := parsed.BuildV2Model()
		if err != nil {
			return nil, parseError(src, fmt.Errorf("build v2 model: %w", err))
		}
		doc.Model = &model.Model
	} else {
		model, err := parsed.BuildV3Model()
		if err != nil {
			return nil, parseError(src, fmt.Errorf("build v3 model: %w", err))
		}
		doc.Model = &model.Model
	}

	if p.strict {
		if err := checkRequired(doc); err != nil {
			return nil, parseError(src, err)
		}
	}
	return doc, nil
}

// configuration lets references resolve relative to where src lives.
func (p *libopenapiParser) configuration(src Source) (*datamodel.DocumentConfiguration, error) {
	u, err := src.URL()
	if err != nil {
		return nil, err
	}
	config := &datamodel.DocumentConfiguration{Logger: p.logger}
	switch u.Scheme {
	case "http", "https":
		base := *u
		base.Path = path.Dir(u.Path)
		base.RawQuery = ""
		base.Fragment = ""
		config.BaseURL = &base
		config.AllowRemoteReferences = true
	default:
		config.BasePath = filepath.Dir(filepath.FromSlash(u.Path))
		config.AllowFileReferences = true
	}
	return config, nil
}
