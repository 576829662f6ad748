package cmd

import (
	"github.com/spf13/cobra"
)

var deleteReason string

var deleteCmd = &cobra.Command{
	Use:   "delete <title>...",
	Short: "Delete pages, one per title, continuing past failures",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Login(cmd.Context()); err != nil {
			return err
		}
		result, err := client.Delete(cmd.Context(), args, deleteReason)
		if err != nil {
			return err
		}
		persistCredentials()
		return reportBatch("delete", result)
	},
}

func init() {
	deleteCmd.Flags().StringVar(&deleteReason, "reason", "", "deletion reason shown in the wiki log")
	rootCmd.AddCommand(deleteCmd)
}
