package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gtera/thiwa/internal/kernel"
	"github.com/gtera/thiwa/internal/localstore"
	"github.com/gtera/thiwa/internal/notify"
	"github.com/gtera/thiwa/internal/remote"
	"github.com/gtera/thiwa/internal/server"
	"github.com/gtera/thiwa/internal/shop"
)

// thiwa run starts the gateway.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the storefront gateway (alias: serve)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// thiwa serve is an alias kept for muscle memory.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// thiwa route:list prints all registered named routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// An unstarted store over throwaway adapters is enough to build
		// the handler; no route handler runs here.
		store := shop.New(remote.NewMemoryDriver(), localstore.NewMemStore())
		_, r, err := kernel.NewHandler(kernel.Deps{Store: store, Notifier: notify.New()})
		if err != nil {
			return err
		}

		routes := r.Routes()
		if len(routes) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		names := make([]string, 0, len(routes))
		for name := range routes {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tPATH")
		fmt.Fprintln(w, "----\t----")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, routes[name])
		}
		return w.Flush()
	},
}
