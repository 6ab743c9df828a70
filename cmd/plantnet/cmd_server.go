package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/plantnet/plantnet/app/graphql"
	"github.com/plantnet/plantnet/app/repositories"
	"github.com/plantnet/plantnet/app/routes"
	"github.com/plantnet/plantnet/app/services"
	"github.com/plantnet/plantnet/internal/kernel"
	"github.com/plantnet/plantnet/internal/server"
	"github.com/plantnet/plantnet/pkg/auth"
)

// plantnet serve: start the HTTP server (and gRPC when GRPC_PORT is set).
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx)
	},
}

// plantnet route:list: print every registered route.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRoutes(cmd.OutOrStdout())
	},
}

// printRoutes builds the route table without connecting to anything; the
// handlers are never invoked.
func printRoutes(out io.Writer) error {
	svcs := services.New(&repositories.Store{}, nil, nil)
	schema, err := graphql.NewSchema(svcs.Plants)
	if err != nil {
		return err
	}
	k := kernel.NewHTTPKernel(routes.Deps{
		Services:   svcs,
		Issuer:     auth.NewTokenIssuer("route-list", 0),
		Catalog:    &schema,
		LocalFiles: "storage",
	}, kernel.Options{})

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range k.Routes() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
