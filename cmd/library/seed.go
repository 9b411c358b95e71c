package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/library_service/internal/app/runtime"
	"github.com/R3E-Network/library_service/internal/app/seed"
	"github.com/R3E-Network/library_service/internal/config"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Load books and members from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			catalog, err := seed.Load(f)
			if err != nil {
				return err
			}

			cfg, err := config.Decode()
			if err != nil {
				return err
			}
			log := runtime.NewLogger(cfg)
			defer log.Close()

			rt, err := runtime.NewApplication(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer rt.Shutdown(cmd.Context())

			res, err := seed.Apply(cmd.Context(), rt.App(), catalog)
			fmt.Fprintf(cmd.OutOrStdout(), "created %d books and %d members\n", len(res.Books), len(res.Members))
			return err
		},
	}
}
