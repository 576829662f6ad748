package wiki

import (
	"context"
	"io"
	"net/url"
	"path/filepath"
)

// UploadItem is one file to upload: the wiki filename and its content.
type UploadItem struct {
	Filename string
	Reader   io.Reader
}

// UploadItemFromPath builds an UploadItem whose wiki filename is the path's
// base name.
func UploadItemFromPath(path string, r io.Reader) UploadItem {
	return UploadItem{Filename: filepath.Base(path), Reader: r}
}

// Upload sends every file as a multipart upload, collecting per-item
// outcomes. Warnings (duplicate content, stale name) are suppressed with
// ignorewarnings, matching bot convention.
func (c *Client) Upload(ctx context.Context, items []UploadItem, comment string) (BatchResult, error) {
	if len(items) == 0 {
		return nil, invalidInputf("upload requires at least one file")
	}

	titles := make([]string, len(items))
	for i, it := range items {
		if it.Filename == "" {
			return nil, invalidInputf("upload item has an empty filename")
		}
		titles[i] = it.Filename
	}

	// Index positionally: filenames may repeat within a batch and each
	// item's Reader is consumable exactly once.
	i := -1
	return c.runBatch(ctx, "upload", titles, func(ctx context.Context, title string) error {
		i++
		item := items[i]

		params := url.Values{}
		params.Set("action", "upload")
		params.Set("filename", item.Filename)
		params.Set("ignorewarnings", "1")
		if comment != "" {
			params.Set("comment", comment)
		}

		resp, err := c.SendMultipart(ctx, params, item.Filename, item.Reader)
		if err != nil {
			return err
		}

		upload := getMap(resp["upload"])
		if upload == nil {
			return &DecodeError{Summary: "upload response has no upload field"}
		}
		if result := getString(upload["result"]); result != "Success" {
			return &APIError{Code: "uploadfailed", Description: result}
		}
		return nil
	})
}
