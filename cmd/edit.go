package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/wikibot/wiki"
)

var (
	editContent string
	editFile    string
	editSummary string
	editMinor   bool
)

var editCmd = &cobra.Command{
	Use:   "edit <title>",
	Short: "Create or replace one page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content := editContent
		if editFile != "" {
			raw, err := os.ReadFile(editFile)
			if err != nil {
				return fmt.Errorf("could not read %s: %w", editFile, err)
			}
			content = string(raw)
		}

		if err := client.Login(cmd.Context()); err != nil {
			return err
		}
		err := client.Edit(cmd.Context(), wiki.EditArgs{
			Title:   args[0],
			Content: content,
			Summary: editSummary,
			Minor:   editMinor,
			Bot:     true,
		})
		if err != nil {
			return err
		}

		fmt.Printf("ok    %s\n", args[0])
		persistCredentials()
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&editContent, "content", "", "wikitext content")
	editCmd.Flags().StringVar(&editFile, "file", "", "read content from this file instead of --content")
	editCmd.Flags().StringVar(&editSummary, "summary", "", "edit summary")
	editCmd.Flags().BoolVar(&editMinor, "minor", false, "mark the edit minor")
	rootCmd.AddCommand(editCmd)
}
