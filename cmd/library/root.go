package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	serve := newServeCommand()

	root := &cobra.Command{
		Use:   "library",
		Short: "Library management API: books, members and issuances",
		Long: `library serves the REST API for the book catalogue, members and
issuances. Configuration comes from the environment and an optional .env file.

Run 'library' with no arguments to start the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newMigrateCommand(), newSeedCommand())
	return root
}
