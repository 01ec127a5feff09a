package graphql

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gqlgen "github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/99designs/gqlgen/graphql/playground"
)

// ComplexityLimit caps the number of fields a single operation may select.
const ComplexityLimit = 500

// New builds the GraphQL endpoint over svc.
func New(svc Services, logger *slog.Logger) (http.Handler, error) {
	schema, err := LoadSchema()
	if err != nil {
		return nil, fmt.Errorf("loading graphql schema: %w", err)
	}
	queries, mutations := resolverTable(svc)
	es := &executableSchema{schema: schema, queries: queries, mutations: mutations, logger: logger}

	srv := handler.New(es)
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	srv.SetQueryCache(lru.New(1000))
	srv.Use(extension.FixedComplexityLimit(ComplexityLimit))
	srv.SetRecoverFunc(func(ctx context.Context, p any) error {
		logger.Error("graphql panic", "panic", p)
		return fmt.Errorf("internal server error")
	})
	return srv, nil
}

// Playground serves the GraphiQL-style explorer for the endpoint at path.
func Playground(path string) http.Handler {
	return playground.Handler("GraphQL Playground", path)
}

var _ gqlgen.ExecutableSchema = (*executableSchema)(nil)
