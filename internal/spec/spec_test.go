package spec

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	v2 "github.com/pb33f/libopenapi/datamodel/high/v2"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T, backend string, strict bool) Parser {
	t.Helper()
	p, err := New(backend, Options{Strict: strict})
	require.NoError(t, err)
	return p
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("swagger-parser", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown parser "swagger-parser"`)
}

func TestBackends(t *testing.T) {
	assert.Equal(t, []string{BackendKin, BackendLibopenapi}, Backends())
}

func TestParse(t *testing.T) {
	tests := []struct {
		file    string
		field   string
		want    string
		version string
	}{
		{"testdata/minimal.yaml", "openapi", "3.0.0", "3.0.0"},
		{"testdata/petstore.yaml", "info.version", "1.2.0", "3.0.3"},
		{"testdata/petstore.json", "info.title", "Petstore", "3.1.0"},
		{"testdata/swagger.yaml", "basePath", "/v1", "2.0"},
	}

	for _, backend := range Backends() {
		p := newParser(t, backend, false)
		for _, tt := range tests {
			t.Run(backend+"/"+tt.file, func(t *testing.T) {
				doc, err := p.Parse(context.Background(), Source(tt.file))
				require.NoError(t, err)
				require.NotNil(t, doc.Model)
				assert.Equal(t, Source(tt.file), doc.Source)
				assert.Equal(t, tt.version, doc.Version)

				got, ok := doc.Field(tt.field)
				require.True(t, ok)
				assert.Equal(t, tt.want, got)
			})
		}
	}
}

func TestParseModels(t *testing.T) {
	ctx := context.Background()

	lib := newParser(t, BackendLibopenapi, false)
	doc, err := lib.Parse(ctx, "testdata/petstore.yaml")
	require.NoError(t, err)
	model, ok := doc.Model.(*v3.Document)
	require.True(t, ok, "libopenapi model is %T", doc.Model)
	assert.Equal(t, "Petstore", model.Info.Title)
	assert.Equal(t, 2, model.Paths.PathItems.Len())

	doc, err = lib.Parse(ctx, "testdata/swagger.yaml")
	require.NoError(t, err)
	swagger, ok := doc.Model.(*v2.Swagger)
	require.True(t, ok, "libopenapi model is %T", doc.Model)
	assert.Equal(t, "/v1", swagger.BasePath)

	kin := newParser(t, BackendKin, false)
	doc, err = kin.Parse(ctx, "testdata/petstore.yaml")
	require.NoError(t, err)
	t3, ok := doc.Model.(*openapi3.T)
	require.True(t, ok, "kin model is %T", doc.Model)
	assert.Equal(t, "1.2.0", t3.Info.Version)
	assert.NotNil(t, t3.Paths.Find("/pets/{petId}"))

	doc, err = kin.Parse(ctx, "testdata/swagger.yaml")
	require.NoError(t, err)
	converted, ok := doc.Model.(*openapi3.T)
	require.True(t, ok, "kin model is %T", doc.Model)
	assert.Contains(t, converted.Components.Schemas, "Pet")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src  Source
		want error
	}{
		{"missing.yaml", ErrNotFound},
		{"zz:missing.yaml", ErrNotFound},
		{"testdata/malformed.yaml", ErrParse},
		{"testdata/noversion.yaml", ErrParse},
		{"testdata", ErrIO},
		{"", ErrEmptySource},
	}

	for _, backend := range Backends() {
		p := newParser(t, backend, false)
		for _, tt := range tests {
			t.Run(backend+"/"+tt.src.String(), func(t *testing.T) {
				doc, err := p.Parse(context.Background(), tt.src)
				assert.Nil(t, doc)
				assert.ErrorIs(t, err, tt.want)
			})
		}
	}
}

func TestParseColonPath(t *testing.T) {
	data, err := os.ReadFile("testdata/petstore.yaml")
	require.NoError(t, err)
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("ab:c.yaml", data, 0o644))

	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			doc, err := newParser(t, backend, false).Parse(context.Background(), "ab:c.yaml")
			require.NoError(t, err)
			assert.Equal(t, "3.0.3", doc.Version)
		})
	}
}

// A required property that refers back to its own schema can never be
// satisfied. libopenapi refuses to build such a model, kin loads it.
func TestParseCircularRequired(t *testing.T) {
	ctx := context.Background()

	_, err := newParser(t, BackendLibopenapi, false).Parse(ctx, "testdata/circular.yaml")
	require.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "circular reference")

	doc, err := newParser(t, BackendKin, false).Parse(ctx, "testdata/circular.yaml")
	require.NoError(t, err)
	model, ok := doc.Model.(*openapi3.T)
	require.True(t, ok)
	assert.NotNil(t, model.Components.Schemas["Node"])
}

func TestParseStrict(t *testing.T) {
	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			lenient := newParser(t, backend, false)
			strict := newParser(t, backend, true)
			ctx := context.Background()

			_, err := lenient.Parse(ctx, "testdata/minimal.yaml")
			require.NoError(t, err)

			_, err = strict.Parse(ctx, "testdata/minimal.yaml")
			assert.ErrorIs(t, err, ErrParse)

			doc, err := strict.Parse(ctx, "testdata/petstore.yaml")
			require.NoError(t, err)
			assert.Equal(t, "3.0.3", doc.Version)
		})
	}
}

func TestParseRemote(t *testing.T) {
	petstore, err := os.ReadFile("testdata/petstore.yaml")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/specs/petstore.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(petstore)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			p, err := New(backend, Options{Client: srv.Client()})
			require.NoError(t, err)

			doc, err := p.Parse(context.Background(), Source(srv.URL+"/specs/petstore.yaml"))
			require.NoError(t, err)
			got, _ := doc.Field("info.version")
			assert.Equal(t, "1.2.0", got)

			_, err = p.Parse(context.Background(), Source(srv.URL+"/specs/missing.yaml"))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestBackendsAgree(t *testing.T) {
	files := []Source{"testdata/minimal.yaml", "testdata/petstore.yaml", "testdata/petstore.json", "testdata/swagger.yaml"}
	lib := newParser(t, BackendLibopenapi, false)
	kin := newParser(t, BackendKin, false)

	for _, file := range files {
		a, err := lib.Parse(context.Background(), file)
		require.NoError(t, err)
		b, err := kin.Parse(context.Background(), file)
		require.NoError(t, err)

		assert.Equal(t, a.Version, b.Version, file)
		rawA, err := a.Raw()
		require.NoError(t, err)
		rawB, err := b.Raw()
		require.NoError(t, err)
		assert.Equal(t, rawA, rawB, file)
	}
}

func BenchmarkParse(b *testing.B) {
	for _, backend := range Backends() {
		b.Run(backend, func(b *testing.B) {
			p, err := New(backend, Options{})
			if err != nil {
				b.Fatal(err)
			}
			ctx := context.Background()
			for b.Loop() {
				if _, err := p.Parse(ctx, "testdata/petstore.yaml"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
