package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockchain-toolbox/eth-rpc-check/internal/catalog"
	"github.com/blockchain-toolbox/eth-rpc-check/internal/cli"
)

func newConfigCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration and endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			cfg.Print()

			cli.Section("Endpoints")
			for _, ep := range cfg.ResolveEndpoints() {
				cli.KeyValue(ep.Name, fmt.Sprintf("%s (%s)", ep.Address, ep.Kind()))
			}
			return nil
		},
	}
}

func newMethodsCmd() *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List the JSON-RPC methods in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := catalog.ParseSet(set)
			if err != nil {
				return err
			}
			methods := catalog.ForSet(s)
			cli.Section(fmt.Sprintf("Methods (%s, %d)", s, len(methods)))
			for _, m := range methods {
				cli.KeyValue(m.Name, m.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&set, "set", string(catalog.SetAll), "method set: all, basic or extended")
	return cmd
}
