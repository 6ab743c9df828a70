// Package graphql serves a graphql-go schema over HTTP.
package graphql

import (
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/plantnet/plantnet/pkg/ctx"
	"github.com/plantnet/plantnet/pkg/logger"
)

// NewSchema creates a read-only schema from a root query.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}

// Request is the standard GraphQL-over-HTTP POST body.
type Request struct {
	Query         string         `json:"query" validate:"required"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

// Handler executes POST bodies against schema. Resolver errors are reported
// in the result's "errors" array with status 200, as GraphQL clients expect.
func Handler(schema graphql.Schema) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		var req Request
		if !c.BindJSON(&req) {
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})
		if result.HasErrors() {
			logger.WithCtx(c.Context()).Debug("graphql errors", "errors", result.Errors)
		}
		c.JSON(http.StatusOK, result)
	}
}
