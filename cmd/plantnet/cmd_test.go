package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRoutesListsEveryEndpoint(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRoutes(&out))

	for _, line := range []string{
		"POST     /users/{email}",
		"PATCH    /users/{email}",
		"GET      /all-users/{email}",
		"PATCH    /user/role/{email}",
		"GET      /plants/seller",
		"DELETE   /plants/{id}",
		"GET      /users/role/{email}",
		"POST     /jwt",
		"GET      /logout",
		"POST     /plants",
		"GET      /plants",
		"GET      /plants/{id}",
		"POST     /order",
		"PATCH    /plants/quantity/{id}",
		"GET      /customer-orders/{email}",
		"GET      /seller-orders/{email}",
		"PATCH    /orders/{id}",
		"DELETE   /orders/{id}",
		"POST     /orders/checkout",
		"POST     /graphql",
	} {
		assert.Contains(t, out.String(), line)
	}
}

func TestPromoteRejectsUnknownRole(t *testing.T) {
	rootCmd.SetArgs([]string{"user:promote", "a@example.com", "wizard"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role must be one of")
}
