package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"voiced/internal/catalog"
	"voiced/pkg/types"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	sttColor    = color.New(color.FgGreen)
	ttsColor    = color.New(color.FgMagenta)
)

func buildCatalogCmd() *cobra.Command {
	var catalogPath string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the models available in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(catalogPath)
			if err != nil {
				return err
			}
			models := cat.List()
			out := cmd.OutOrStdout()
			if len(models) == 0 {
				fmt.Fprintln(out, "No models available.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
			fmt.Fprintln(tw, headerColor.Sprint("NAME\tTYPE\tENGINE\tDESCRIPTION"))
			for _, m := range models {
				kind := sttColor.Sprint(string(m.Kind))
				if m.Kind == types.KindTTS {
					kind = ttsColor.Sprint(string(m.Kind))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, kind, m.Engine, m.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Load a model with POST /models/load, or start the daemon with --preload <name>.")
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "catalog.yaml", "Path to the model catalog YAML")
	return cmd
}
