package wiki

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/olgasafonova/wikibot/metrics"
	"github.com/olgasafonova/wikibot/tracing"
)

// NamespaceAll is the pseudo-filter for allpages meaning "run once per known
// namespace, concatenating results in namespace-ID order".
const NamespaceAll = "all"

// Operation describes one list operation's naming conventions: how its
// query parameters are prefixed, where its items live, which field carries
// the title, and whether continuation uses the modern continue name or the
// older offset name. Per-operation differences are data here, not code
// forks at the call sites.
type Operation struct {
	// Name is the long operation name, also the query field holding items
	Name string

	// Code prefixes the operation's query parameters (aclimit, accontinue)
	Code string

	// ItemField holds the per-item title
	ItemField string

	// UsesOffset marks the older API revision where continuation is
	// {code}offset instead of {code}continue
	UsesOffset bool

	// RequiredFilter names the parameter that must be supplied by the
	// caller, "" when the operation runs unfiltered
	RequiredFilter string

	// NestedResults marks items living one level deeper, at
	// query.<name>.results
	NestedResults bool

	// WithURL marks operations whose items carry a secondary URL field,
	// emitted joined to the title by TitleURLSeparator
	WithURL bool
}

// continueParam is the request/response field carrying this operation's
// continuation cursor.
func (op *Operation) continueParam() string {
	if op.UsesOffset {
		return op.Code + "offset"
	}
	return op.Code + "continue"
}

// extractItem pulls this operation's title field (plus URL when present)
// out of one decoded item. Items without the field are skipped.
func (op *Operation) extractItem(m map[string]any) (string, bool) {
	if m == nil {
		return "", false
	}
	title := getString(m[op.ItemField])
	if title == "" {
		return "", false
	}
	if op.WithURL {
		return title + TitleURLSeparator + getString(m["url"]), true
	}
	return title, true
}

// operations is the static descriptor table, one entry per supported list
// kind. exturlusage and querypage keep their historical offset-style
// continuation; querypage additionally nests its items under a results
// field; allcategories names its title field differently from everyone
// else.
var operations = map[string]*Operation{
	"allcategories":   {Name: "allcategories", Code: "ac", ItemField: "category"},
	"allimages":       {Name: "allimages", Code: "ai", ItemField: "title"},
	"alllinks":        {Name: "alllinks", Code: "al", ItemField: "title"},
	"allpages":        {Name: "allpages", Code: "ap", ItemField: "title"},
	"backlinks":       {Name: "backlinks", Code: "bl", ItemField: "title", RequiredFilter: "bltitle"},
	"categorymembers": {Name: "categorymembers", Code: "cm", ItemField: "title", RequiredFilter: "cmtitle"},
	"embeddedin":      {Name: "embeddedin", Code: "ei", ItemField: "title", RequiredFilter: "eititle"},
	"exturlusage":     {Name: "exturlusage", Code: "eu", ItemField: "title", UsesOffset: true, WithURL: true},
	"imageusage":      {Name: "imageusage", Code: "iu", ItemField: "title", RequiredFilter: "iutitle"},
	"protectedtitles": {Name: "protectedtitles", Code: "pt", ItemField: "title"},
	"querypage":       {Name: "querypage", Code: "qp", ItemField: "title", UsesOffset: true, RequiredFilter: "qppage", NestedResults: true},
}

// Operations returns the supported list operation names, sorted.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List materializes the complete result set of one list operation across
// all pages. parameter is an optional single "key=value" filter; operations
// with a mandatory filter reject its absence before any request goes out.
// Cancellation is honored between pages.
func (c *Client) List(ctx context.Context, operation, parameter string) ([]string, error) {
	op, ok := operations[operation]
	if !ok {
		return nil, invalidInputf("unknown list operation %q (supported: %v)", operation, Operations())
	}

	filterKey, filterVal, err := splitFilter(parameter)
	if err != nil {
		return nil, err
	}
	if op.RequiredFilter != "" && filterKey != op.RequiredFilter {
		return nil, invalidInputf("%s requires the %s parameter, e.g. %s=Some_title", operation, op.RequiredFilter, op.RequiredFilter)
	}

	ctx, span := tracing.StartSpan(ctx, "wiki.list")
	defer span.End()
	tracing.AddListAttributes(span, operation, parameter)

	// allpages with apnamespace=all fans out over every non-negative
	// namespace, one full pagination loop each, in namespace-ID order.
	var results []string
	if op.Name == "allpages" && filterKey == "apnamespace" && filterVal == NamespaceAll {
		results, err = c.listAllNamespaces(ctx, op)
	} else {
		results, err = c.fetchAll(ctx, op, filterKey, filterVal)
	}
	tracing.RecordError(span, err)
	return results, err
}

// fetchAll is the continuation loop: request, decode, append, follow the
// cursor until the server stops returning one.
func (c *Client) fetchAll(ctx context.Context, op *Operation, filterKey, filterVal string) ([]string, error) {
	var (
		results []string
		cursor  string
		have    bool
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("list %s cancelled: %w", op.Name, err)
		}

		params := url.Values{}
		params.Set("action", "query")
		params.Set("list", op.Name)
		params.Set(op.Code+"limit", "max")
		if filterKey != "" {
			params.Set(filterKey, filterVal)
		}
		if have {
			params.Set(op.continueParam(), cursor)
		}

		resp, err := c.Get(ctx, params)
		if err != nil {
			return nil, err
		}

		page, err := decodeListPage(resp, op)
		if err != nil {
			return nil, err
		}

		results = append(results, page.items...)
		metrics.ListPages.WithLabelValues(op.Name).Inc()

		if !page.hasCursor {
			return results, nil
		}
		cursor, have = page.cursor, true
	}
}

// listAllNamespaces discovers the wiki's namespaces once, then runs the
// allpages loop per non-negative ID ascending. Negative IDs are virtual
// namespaces with no stored pages and are skipped.
func (c *Client) listAllNamespaces(ctx context.Context, op *Operation) ([]string, error) {
	ids, err := c.Namespaces(ctx)
	if err != nil {
		return nil, err
	}

	var results []string
	for _, id := range ids {
		if id < 0 {
			continue
		}
		pages, err := c.fetchAll(ctx, op, "apnamespace", strconv.Itoa(id))
		if err != nil {
			return nil, err
		}
		results = append(results, pages...)
	}
	return results, nil
}

// Namespaces queries the wiki's namespace table, a one-shot non-paginated
// side query, and returns the IDs sorted ascending.
func (c *Client) Namespaces(ctx context.Context) ([]int, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "siteinfo")
	params.Set("siprop", "namespaces")

	resp, err := c.Get(ctx, params)
	if err != nil {
		return nil, err
	}

	query := getMap(resp["query"])
	if query == nil {
		return nil, &DecodeError{Summary: "siteinfo response has no query field"}
	}

	var ids []int
	switch ns := query["namespaces"].(type) {
	case map[string]any:
		for _, v := range ns {
			if m := getMap(v); m != nil {
				ids = append(ids, getInt(m["id"]))
			}
		}
	case []any:
		// formatversion=2 delivers a list
		for _, v := range ns {
			if m := getMap(v); m != nil {
				ids = append(ids, getInt(m["id"]))
			}
		}
	default:
		return nil, &DecodeError{Summary: "siteinfo response has no namespaces field"}
	}

	sort.Ints(ids)
	return ids, nil
}

// splitFilter parses the optional single key=value filter parameter.
func splitFilter(parameter string) (key, value string, err error) {
	if parameter == "" {
		return "", "", nil
	}
	for i := 0; i < len(parameter); i++ {
		if parameter[i] == '=' {
			if i == 0 {
				return "", "", invalidInputf("filter parameter %q has an empty key", parameter)
			}
			return parameter[:i], parameter[i+1:], nil
		}
	}
	return "", "", invalidInputf("filter parameter %q is not of the form key=value", parameter)
}
