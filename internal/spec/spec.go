package spec

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
)

// Parser backends accepted by New.
const (
	BackendLibopenapi = "libopenapi"
	BackendKin        = "kin"
)

// Parser turns a Source into a Document. Failures satisfy errors.Is
// against ErrNotFound, ErrParse, ErrIO or ErrTimeout.
type Parser interface {
	Parse(ctx context.Context, src Source) (*Document, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(ctx context.Context, src Source) (*Document, error)

func (f ParserFunc) Parse(ctx context.Context, src Source) (*Document, error) {
	return f(ctx, src)
}

// Options configures a parser backend.
type Options struct {
	// Strict rejects documents that parse but miss required OpenAPI
	// structure.
	Strict bool
	Client *http.Client
	Logger *slog.Logger
}

var backends = map[string]func(Options) Parser{
	BackendLibopenapi: newLibopenapiParser,
	BackendKin:        newKinParser,
}

// Backends returns the names accepted by New.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the parser backend registered under name.
func New(name string, opts Options) (Parser, error) {
	build, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown parser %q (want one of %v)", name, Backends())
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return build(opts), nil
}
