package cmd

import (
	"github.com/spf13/cobra"

	"github.com/olgasafonova/wikibot/wiki"
)

var moveArgs wiki.MoveArgs

var moveCmd = &cobra.Command{
	Use:   "move <title>...",
	Short: "Rename pages using one destination strategy",
	Long: `Rename a batch of pages. Pick at most one destination strategy;
with none, each destination is the source title unchanged:

  --to           explicit destinations, one per source title, same order
  --find/--replace  substring rewrite applied to every source title
  --prepend/--append  concatenation around every source title

Examples:
  wikibot move "Old name" --to "New name"
  wikibot move "A (2023)" "B (2023)" --find="2023" --replace="2024"
  wikibot move "Draft" --prepend="Archive/"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Login(cmd.Context()); err != nil {
			return err
		}
		moveArgs.Titles = args
		result, err := client.Move(cmd.Context(), moveArgs)
		if err != nil {
			return err
		}
		persistCredentials()
		return reportBatch("move", result)
	},
}

func init() {
	moveCmd.Flags().StringSliceVar(&moveArgs.Destinations, "to", nil, "explicit destination titles, parallel to sources")
	moveCmd.Flags().StringVar(&moveArgs.Find, "find", "", "substring to replace in every source title")
	moveCmd.Flags().StringVar(&moveArgs.Replace, "replace", "", "replacement for --find")
	moveCmd.Flags().StringVar(&moveArgs.Prepend, "prepend", "", "string prepended to every source title")
	moveCmd.Flags().StringVar(&moveArgs.Append, "append", "", "string appended to every source title")
	moveCmd.Flags().StringVar(&moveArgs.Reason, "reason", "", "move reason shown in the wiki log")
	moveCmd.Flags().BoolVar(&moveArgs.MoveTalk, "movetalk", false, "move the talk page along")
	moveCmd.Flags().BoolVar(&moveArgs.NoRedirect, "noredirect", false, "suppress the redirect left behind")
	rootCmd.AddCommand(moveCmd)
}
