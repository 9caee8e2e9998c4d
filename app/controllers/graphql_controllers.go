package controllers

import (
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/gtera/thiwa/internal/shop"
	"github.com/gtera/thiwa/pkg/ctx"
	gql "github.com/gtera/thiwa/pkg/graphql"
)

// GraphQLController exposes a read-only query surface over the synced
// catalogue, for storefront clients that prefer one round-trip over several
// REST calls. All mutations stay on the REST admin API.
type GraphQLController struct {
	schema graphql.Schema
}

func NewGraphQLController(store *shop.Store) (*GraphQLController, error) {
	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"price":       &graphql.Field{Type: graphql.Int},
			"image":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: graphql.String},
		},
	})

	galleryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GalleryImage",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"image": &graphql.Field{Type: graphql.String},
		},
	})

	root := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return store.Products(), nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					product, ok := store.Product(id)
					if !ok {
						return nil, nil
					}
					return product, nil
				},
			},
			"gallery": &graphql.Field{
				Type: graphql.NewList(galleryType),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return store.Gallery(), nil
				},
			},
			"paymentInstructions": &graphql.Field{
				Type: graphql.String,
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return store.PaymentInstructions(), nil
				},
			},
		},
	})

	schema, err := gql.NewSchema(root)
	if err != nil {
		return nil, fmt.Errorf("graphql: build schema: %w", err)
	}
	return &GraphQLController{schema: schema}, nil
}

type graphqlInput struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func (gc *GraphQLController) Query(c *ctx.Context) {
	var in graphqlInput
	if !c.BindJSON(&in) {
		return
	}
	if in.Query == "" {
		c.Error(http.StatusBadRequest, "query is required")
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         gc.schema,
		RequestString:  in.Query,
		VariableValues: in.Variables,
		Context:        c.Context(),
	})
	c.JSON(http.StatusOK, result)
}
