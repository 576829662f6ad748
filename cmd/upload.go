package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/olgasafonova/wikibot/wiki"
)

var uploadComment string

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload files, one per path, continuing past failures",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items := make([]wiki.UploadItem, 0, len(args))
		var open []*os.File
		defer func() {
			for _, f := range open {
				_ = f.Close()
			}
		}()

		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("could not open %s: %w", path, err)
			}
			open = append(open, f)
			items = append(items, wiki.UploadItemFromPath(path, f))
		}

		if err := client.Login(cmd.Context()); err != nil {
			return err
		}
		result, err := client.Upload(cmd.Context(), items, uploadComment)
		if err != nil {
			return err
		}
		persistCredentials()
		return reportBatch("upload", result)
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadComment, "comment", "", "upload comment shown in the file history")
	rootCmd.AddCommand(uploadCmd)
}
