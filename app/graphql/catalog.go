// Package graphql exposes the plant catalogue as a read-only GraphQL schema.
package graphql

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/plantnet/plantnet/app/models"
	"github.com/plantnet/plantnet/app/services"
	pkggraphql "github.com/plantnet/plantnet/pkg/graphql"
	"github.com/plantnet/plantnet/pkg/response"
)

// Catalog is the read side the schema resolves against.
type Catalog interface {
	ListN(ctx context.Context, limit int) ([]models.Plant, error)
	Get(ctx context.Context, id string) (*models.Plant, error)
}

var _ Catalog = (*services.PlantService)(nil)

var sellerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Seller",
	Fields: graphql.Fields{
		"name":  &graphql.Field{Type: graphql.String},
		"email": &graphql.Field{Type: graphql.String},
		"image": &graphql.Field{Type: graphql.String},
	},
})

var plantType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Plant",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(models.Plant).ID, nil
			},
		},
		"name":        &graphql.Field{Type: graphql.String, Resolve: plantField(func(p models.Plant) any { return p.Name })},
		"category":    &graphql.Field{Type: graphql.String, Resolve: plantField(func(p models.Plant) any { return p.Category })},
		"description": &graphql.Field{Type: graphql.String, Resolve: plantField(func(p models.Plant) any { return p.Description })},
		"image":       &graphql.Field{Type: graphql.String, Resolve: plantField(func(p models.Plant) any { return p.Image })},
		"price":       &graphql.Field{Type: graphql.Float, Resolve: plantField(func(p models.Plant) any { return p.Price })},
		"quantity":    &graphql.Field{Type: graphql.Int, Resolve: plantField(func(p models.Plant) any { return p.Quantity })},
		"seller": &graphql.Field{
			Type: sellerType,
			Resolve: plantField(func(p models.Plant) any {
				return map[string]any{"name": p.Seller.Name, "email": p.Seller.Email, "image": p.Seller.Image}
			}),
		},
	},
})

func plantField(get func(models.Plant) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		return get(p.Source.(models.Plant)), nil
	}
}

// NewSchema builds the catalogue schema:
//
//	{ plants(limit: 5) { id name price } plant(id: "...") { name seller { email } } }
func NewSchema(catalog Catalog) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"plants": &graphql.Field{
				Type: graphql.NewList(plantType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					limit, _ := p.Args["limit"].(int)
					plants, err := catalog.ListN(p.Context, limit)
					if err != nil {
						return nil, public(err)
					}
					return plants, nil
				},
			},
			"plant": &graphql.Field{
				Type: plantType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					plant, err := catalog.Get(p.Context, id)
					if err != nil {
						if services.IsKind(err, services.KindNotFound) {
							return nil, nil
						}
						return nil, public(err)
					}
					return *plant, nil
				},
			},
		},
	})
	return pkggraphql.NewSchema(query)
}

// public keeps internal causes out of the result's error list.
func public(err error) error {
	var se response.StatusError
	if errors.As(err, &se) {
		return errors.New(se.PublicMessage())
	}
	return errors.New("Internal Server Error")
}
