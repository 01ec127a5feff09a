// Package graphql serves the catalog over GraphQL. Requests are parsed,
// validated and cached by gqlgen's handler; execution walks the selection
// set against a table of resolvers backed by the same services as REST.
package graphql

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

//go:embed schema.graphql
var schemaSDL string

// LoadSchema parses the embedded schema.
func LoadSchema() (*ast.Schema, error) {
	return gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSDL})
}

// executableSchema implements gqlgen's ExecutableSchema on top of a resolver
// table instead of generated code.
type executableSchema struct {
	schema    *ast.Schema
	queries   map[string]field
	mutations map[string]field
	logger    *slog.Logger
}

func (e *executableSchema) Schema() *ast.Schema { return e.schema }

// Complexity defers to gqlgen's default of one per field.
func (e *executableSchema) Complexity(typeName, fieldName string, childComplexity int, args map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) gqlgen.ResponseHandler {
	oc := gqlgen.GetOperationContext(ctx)

	var (
		root  *ast.Definition
		table map[string]field
	)
	switch oc.Operation.Operation {
	case ast.Query:
		root, table = e.schema.Query, e.queries
	case ast.Mutation:
		root, table = e.schema.Mutation, e.mutations
	default:
		return gqlgen.OneShot(gqlgen.ErrorResponse(ctx, "unsupported operation %q", oc.Operation.Operation))
	}

	ex := &execution{oc: oc, logger: e.logger}
	data := ex.root(ctx, root, table)
	raw, err := json.Marshal(data)
	if err != nil {
		e.logger.Error("encoding graphql response", "error", err)
		return gqlgen.OneShot(gqlgen.ErrorResponse(ctx, "Internal server error"))
	}
	return gqlgen.OneShot(&gqlgen.Response{Data: raw, Errors: ex.errors})
}

// Only __typename is served; schema introspection is switched off.
var errIntrospection = errors.New("introspection disabled")

type execution struct {
	oc     *gqlgen.OperationContext
	errors gqlerror.List
	logger *slog.Logger
}

// root resolves the top-level fields in document order. A failed non-null
// field nulls the whole data object.
func (ex *execution) root(ctx context.Context, def *ast.Definition, table map[string]field) any {
	out := object{}
	for _, f := range gqlgen.CollectFields(ex.oc, ex.oc.Operation.SelectionSet, []string{def.Name}) {
		key := f.Alias
		if key == "" {
			key = f.Name
		}
		if f.Name == "__typename" {
			out = append(out, member{key, def.Name})
			continue
		}

		path := ast.Path{ast.PathName(key)}
		fd, ok := table[f.Name]
		if !ok {
			ex.fail(path, f.Field, errIntrospection)
			if f.Definition != nil && f.Definition.Type.NonNull {
				return nil
			}
			out = append(out, member{key, nil})
			continue
		}

		value, err := ex.resolve(ctx, fd, f)
		if err != nil {
			ex.fail(path, f.Field, err)
			if f.Definition.Type.NonNull {
				return nil
			}
			out = append(out, member{key, nil})
			continue
		}
		out = append(out, member{key, ex.project(value, f.Definition.Type, f.Selections)})
	}
	return out
}

func (ex *execution) resolve(ctx context.Context, fd field, f gqlgen.CollectedField) (any, error) {
	if err := fd.access.check(ctx); err != nil {
		return nil, err
	}
	sel := make(map[string]bool)
	for _, child := range gqlgen.CollectFields(ex.oc, f.Selections, []string{f.Definition.Type.Name()}) {
		sel[child.Name] = true
	}
	req := request{args: f.ArgumentMap(ex.oc.Variables), selected: sel}

	v, err := fd.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return toJSONValue(v)
}

// project shapes a JSON-decoded value by the selection set of its field.
func (ex *execution) project(value any, typ *ast.Type, sel ast.SelectionSet) any {
	if value == nil {
		return nil
	}
	if typ.Elem != nil {
		list, ok := value.([]any)
		if !ok {
			return nil
		}
		out := make([]any, len(list))
		for i, v := range list {
			out[i] = ex.project(v, typ.Elem, sel)
		}
		return out
	}
	if len(sel) == 0 {
		return value
	}

	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	name := typ.Name()
	out := object{}
	for _, f := range gqlgen.CollectFields(ex.oc, sel, []string{name}) {
		key := f.Alias
		if key == "" {
			key = f.Name
		}
		if f.Name == "__typename" {
			out = append(out, member{key, name})
			continue
		}
		out = append(out, member{key, ex.project(m[f.Name], f.Definition.Type, f.Selections)})
	}
	return out
}

func (ex *execution) fail(path ast.Path, f *ast.Field, err error) {
	gerr := toGraphQLError(err, ex.logger)
	gerr.Path = path
	if f != nil && f.Position != nil {
		gerr.Locations = []gqlerror.Location{{Line: f.Position.Line, Column: f.Position.Column}}
	}
	ex.errors = append(ex.errors, gerr)
}

// toJSONValue turns a resolver result into the generic form the projection
// walks. Numbers stay json.Number so ids and prices round-trip exactly.
func toJSONValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return out, nil
}

// object is a JSON object that keeps the order of the selection set.
type object []member

type member struct {
	key   string
	value any
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
