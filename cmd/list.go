package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/wikibot/wiki"
)

var listOutput string

var listCmd = &cobra.Command{
	Use:   "list <operation> [parameter]",
	Short: "Materialize a complete paginated list",
	Long: fmt.Sprintf(`Run one list operation across all continuation pages and write the
complete result set as pretty-printed JSON.

Supported operations:
  %s

Some operations require a filter parameter, given as key=value:
  wikibot list backlinks bltitle=Main_Page
  wikibot list categorymembers "cmtitle=Category:Stubs"
  wikibot list allpages apnamespace=all   # fan out over every namespace`, strings.Join(wiki.Operations(), ", ")),
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parameter := ""
		if len(args) == 2 {
			parameter = args[1]
		}

		items, err := client.List(cmd.Context(), args[0], parameter)
		if err != nil {
			return err
		}

		// Split exturlusage's joined title/url pairs back apart for output.
		type entry struct {
			Title string `json:"title"`
			URL   string `json:"url,omitempty"`
		}
		entries := make([]entry, 0, len(items))
		for _, item := range items {
			title, url, _ := strings.Cut(item, wiki.TitleURLSeparator)
			entries = append(entries, entry{Title: title, URL: url})
		}

		raw, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(listOutput, raw, 0o644); err != nil {
			return fmt.Errorf("could not write %s: %w", listOutput, err)
		}

		logger.Info("list complete", "operation", args[0], "items", len(items), "output", listOutput)
		persistCredentials()
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "wikibot-output.json", "output file for the JSON result")
	rootCmd.AddCommand(listCmd)
}
