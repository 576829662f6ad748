package cmd

import (
	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge <title>...",
	Short: "Invalidate the server-side render cache of pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := client.Purge(cmd.Context(), args)
		if err != nil {
			return err
		}
		persistCredentials()
		return reportBatch("purge", result)
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}
