package wiki

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/olgasafonova/wikibot/metrics"
	"github.com/olgasafonova/wikibot/tracing"
)

// BatchOutcome records one item of a batch mutation. Err is nil on success.
type BatchOutcome struct {
	Title string
	Err   error
}

// BatchResult is the per-item report of a batch mutation. A failed item
// never blocks the ones after it.
type BatchResult []BatchOutcome

// Failed counts the items that errored.
func (r BatchResult) Failed() int {
	n := 0
	for _, o := range r {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// throttle pauses between batch items as a server courtesy, honoring
// cancellation.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.RLock()
	delay := c.config.EditDelay
	c.mu.RUnlock()
	if delay <= 0 {
		return nil
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runBatch applies fn to every title strictly in input order, recording
// per-item outcomes and continuing past failures. Cancellation is checked
// before each item; the inter-item delay applies between items, not after
// the last.
func (c *Client) runBatch(ctx context.Context, action string, titles []string, fn func(context.Context, string) error) (BatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "wiki.batch")
	defer span.End()
	tracing.AddBatchAttributes(span, action, len(titles))

	results := make(BatchResult, 0, len(titles))
	for i, title := range titles {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if i > 0 {
			if err := c.throttle(ctx); err != nil {
				return results, err
			}
		}

		err := fn(ctx, title)
		results = append(results, BatchOutcome{Title: title, Err: err})
		if err != nil {
			metrics.BatchItems.WithLabelValues(action, "error").Inc()
			c.logger.Warn("batch item failed", "action", action, "title", title, "error", err)
		} else {
			metrics.BatchItems.WithLabelValues(action, "ok").Inc()
		}
	}
	return results, nil
}

// Delete removes every listed page, collecting per-item outcomes.
func (c *Client) Delete(ctx context.Context, titles []string, reason string) (BatchResult, error) {
	if len(titles) == 0 {
		return nil, invalidInputf("delete requires at least one title")
	}
	return c.runBatch(ctx, "delete", titles, func(ctx context.Context, title string) error {
		params := url.Values{}
		params.Set("action", "delete")
		params.Set("title", title)
		if reason != "" {
			params.Set("reason", reason)
		}
		_, err := c.Post(ctx, params)
		return err
	})
}

// Purge invalidates the server-side render cache of every listed page.
// MediaWiki accepts purge without a token, so this works logged out.
func (c *Client) Purge(ctx context.Context, titles []string) (BatchResult, error) {
	if len(titles) == 0 {
		return nil, invalidInputf("purge requires at least one title")
	}
	return c.runBatch(ctx, "purge", titles, func(ctx context.Context, title string) error {
		params := url.Values{}
		params.Set("action", "purge")
		params.Set("titles", title)
		_, err := c.Post(ctx, params)
		return err
	})
}

// EditArgs describes one page edit.
type EditArgs struct {
	Title   string
	Content string
	Summary string
	Minor   bool
	Bot     bool
}

// Edit creates or replaces one page.
func (c *Client) Edit(ctx context.Context, args EditArgs) error {
	if args.Title == "" {
		return invalidInputf("edit requires a title")
	}

	params := url.Values{}
	params.Set("action", "edit")
	params.Set("title", args.Title)
	params.Set("text", args.Content)
	if args.Summary != "" {
		params.Set("summary", args.Summary)
	}
	if args.Minor {
		params.Set("minor", "1")
	}
	if args.Bot {
		params.Set("bot", "1")
	}

	resp, err := c.Post(ctx, params)
	if err != nil {
		return err
	}

	edit := getMap(resp["edit"])
	if edit == nil {
		return &DecodeError{Summary: "edit response has no edit field"}
	}
	if result := getString(edit["result"]); result != "Success" {
		return &APIError{Code: "editfailed", Description: result}
	}
	return nil
}

// MoveArgs describes a batch rename. At most one destination strategy may
// be selected: an explicit parallel Destinations list, a Find/Replace
// substring rewrite applied to every source title, or Prepend/Append
// concatenation. With no strategy each destination is the source title
// unchanged.
type MoveArgs struct {
	Titles []string

	// Explicit destinations, parallel to Titles
	Destinations []string

	// Global substring find/replace
	Find    string
	Replace string

	// Concatenation applied around each source title
	Prepend string
	Append  string

	Reason     string
	MoveTalk   bool
	NoRedirect bool
}

// destinations resolves the selected strategy into one destination per
// source title. All contract violations surface before any network call.
func (a *MoveArgs) destinations() ([]string, error) {
	explicit := len(a.Destinations) > 0
	replace := a.Find != ""
	concat := a.Prepend != "" || a.Append != ""

	selected := 0
	for _, on := range []bool{explicit, replace, concat} {
		if on {
			selected++
		}
	}
	if selected > 1 {
		return nil, invalidInputf("move destination strategies are mutually exclusive: pick one of explicit destinations, find/replace, or prepend/append")
	}

	switch {
	case explicit:
		if len(a.Destinations) != len(a.Titles) {
			return nil, invalidInputf("got %d source titles but %d destinations", len(a.Titles), len(a.Destinations))
		}
		return a.Destinations, nil
	case replace:
		dests := make([]string, len(a.Titles))
		for i, t := range a.Titles {
			dests[i] = strings.ReplaceAll(t, a.Find, a.Replace)
		}
		return dests, nil
	default:
		// Prepend/Append, or no strategy at all: empty affixes keep each
		// source title unchanged.
		dests := make([]string, len(a.Titles))
		for i, t := range a.Titles {
			dests[i] = a.Prepend + t + a.Append
		}
		return dests, nil
	}
}

// Move renames every listed page according to the selected destination
// strategy, collecting per-item outcomes.
func (c *Client) Move(ctx context.Context, args MoveArgs) (BatchResult, error) {
	if len(args.Titles) == 0 {
		return nil, invalidInputf("move requires at least one title")
	}
	dests, err := args.destinations()
	if err != nil {
		return nil, err
	}

	i := -1
	return c.runBatch(ctx, "move", args.Titles, func(ctx context.Context, title string) error {
		i++
		params := url.Values{}
		params.Set("action", "move")
		params.Set("from", title)
		params.Set("to", dests[i])
		if args.Reason != "" {
			params.Set("reason", args.Reason)
		}
		if args.MoveTalk {
			params.Set("movetalk", "1")
		}
		if args.NoRedirect {
			params.Set("noredirect", "1")
		}
		_, err := c.Post(ctx, params)
		return err
	})
}
