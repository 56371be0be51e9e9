package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/nuvl/nuvlworld/world/argue"
	"github.com/nuvl/nuvlworld/world/format"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var flagFrameworkYAML bool

var frameworkCmd = &cobra.Command{
	Use:   "framework",
	Short: "Print the argumentation framework built from implies and disjointAttrs facts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		fw := argue.BuildFramework(s)
		if !flagFrameworkYAML {
			fmt.Fprint(cmd.OutOrStdout(), format.NewTableFormatter().FormatFramework(fw))
			return nil
		}
		data, err := yaml.Marshal(fw)
		if err != nil {
			return errors.Wrap(err, "marshal framework")
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	frameworkCmd.Flags().BoolVar(&flagFrameworkYAML, "yaml", false, "print YAML for an external engine")
}
