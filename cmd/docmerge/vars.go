package main

import (
	"encoding/json"
	"fmt"

	"github.com/benjaminschreck/go-docmerge/pkg/docmerge"
	"github.com/spf13/cobra"
)

var varsJSON bool

var varsCmd = &cobra.Command{
	Use:   "vars [template]",
	Short: "List the placeholders of a template",
	Long:  `List every ${name} placeholder used in the body, headers and footers, in document order.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, err := docmerge.Open(args[0])
		if err != nil {
			return err
		}
		defer tmpl.Close()

		names := tmpl.Variables()
		out := cmd.OutOrStdout()
		if varsJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			if names == nil {
				names = []string{}
			}
			return encoder.Encode(names)
		}
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(varsCmd)
	varsCmd.Flags().BoolVar(&varsJSON, "json", false, "Output in JSON format")
}
