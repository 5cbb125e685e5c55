package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered sources and their store sizes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := recordStore()

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"source", "offers"})
		for _, source := range newRegistry().Sources() {
			tbl, err := store.Load(source)
			if err != nil {
				return fmt.Errorf("load %s: %w", source, err)
			}
			t.AppendRow(table.Row{source, tbl.Len()})
		}
		fmt.Println(t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
