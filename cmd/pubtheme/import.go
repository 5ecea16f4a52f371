package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/pubtheme"
)

func newImportCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <fixtures.yaml>",
		Short: "Load posts, terms and widgets from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := flags.logger()
			if err != nil {
				return err
			}
			f, err := pubtheme.LoadFixtures(args[0])
			if err != nil {
				return err
			}
			store, err := pubtheme.NewStore(flags.database)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			return store.Import(log.WithContext(cmd.Context()), f)
		},
	}

	return cmd
}
