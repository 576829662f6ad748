// Package tools provides a metadata-driven registry for MCP tool
// definitions over the wiki client: declarative specs plus type-safe
// handlers wired with metrics and tracing.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "wikibot_list")
	Name string

	// Method is the client method name (e.g., "List")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (query, mutation)
	Category string

	// ReadOnly indicates the tool doesn't modify wiki state
	ReadOnly bool

	// Destructive indicates the tool can delete or overwrite pages
	Destructive bool

	// Idempotent indicates repeated calls have the same effect
	Idempotent bool
}

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}

// AllTools contains all tool specifications for the wikibot MCP surface.
var AllTools = []ToolSpec{
	{
		Name:     "wikibot_list",
		Method:   "List",
		Title:    "List Wiki Pages",
		Category: "query",
		Description: `Materialize the complete result set of one paginated list operation.

USE WHEN: User asks to enumerate pages, categories, backlinks, category members, or external link usage.

PARAMETERS:
- operation: one of allcategories, allimages, alllinks, allpages, backlinks, categorymembers, embeddedin, exturlusage, imageusage, protectedtitles, querypage (required)
- parameter: optional key=value filter; some operations require one (e.g. bltitle=Main_Page for backlinks)

RETURNS: All item titles across every continuation page, in server order.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "wikibot_namespaces",
		Method:   "Namespaces",
		Title:    "List Namespaces",
		Category: "query",
		Description: `List the wiki's namespace IDs.

USE WHEN: User asks which namespaces exist, or before fanning allpages out over all namespaces.

RETURNS: Namespace IDs sorted ascending; negative IDs are virtual namespaces.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "wikibot_edit",
		Method:   "Edit",
		Title:    "Edit Page",
		Category: "mutation",
		Description: `Create or replace one wiki page (requires credentials).

PARAMETERS:
- title: page title (required)
- content: full wikitext content (required)
- summary: edit summary

RETURNS: Confirmation of the edit.`,
	},
	{
		Name:     "wikibot_delete",
		Method:   "Delete",
		Title:    "Delete Pages",
		Category: "mutation",
		Description: `Delete a batch of pages (requires credentials).

PARAMETERS:
- titles: page titles to delete, processed strictly in order (required)
- reason: deletion reason shown in the log

RETURNS: A per-title report; one failed title does not block the rest.`,
		Destructive: true,
	},
	{
		Name:     "wikibot_move",
		Method:   "Move",
		Title:    "Move Pages",
		Category: "mutation",
		Description: `Rename a batch of pages (requires credentials).

PARAMETERS:
- titles: source titles (required)
- destinations: explicit destination titles, parallel to titles
- find / replace: substring rewrite applied to every source title
- prepend / append: strings concatenated around every source title
At most one destination strategy may be used; with none, each destination
is the source title unchanged.

RETURNS: A per-title report; one failed title does not block the rest.`,
		Destructive: true,
	},
	{
		Name:     "wikibot_purge",
		Method:   "Purge",
		Title:    "Purge Pages",
		Category: "mutation",
		Description: `Invalidate the server-side render cache of a batch of pages.

PARAMETERS:
- titles: page titles to purge (required)

RETURNS: A per-title report.`,
		Idempotent: true,
	},
}
