package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/wikibot/tracing"
	"github.com/olgasafonova/wikibot/wiki"
)

// ListArgs are the arguments of wikibot_list.
type ListArgs struct {
	Operation string `json:"operation" jsonschema:"List operation name"`
	Parameter string `json:"parameter,omitempty" jsonschema:"Optional key=value filter parameter"`
}

// ListResult is the complete materialized list.
type ListResult struct {
	Operation string   `json:"operation"`
	Count     int      `json:"count"`
	Items     []string `json:"items"`
}

// NamespacesArgs has no fields; the namespace table takes no parameters.
type NamespacesArgs struct{}

// NamespacesResult lists the wiki's namespace IDs.
type NamespacesResult struct {
	IDs []int `json:"ids"`
}

// EditToolArgs are the arguments of wikibot_edit.
type EditToolArgs struct {
	Title   string `json:"title" jsonschema:"Page title"`
	Content string `json:"content" jsonschema:"Full wikitext content"`
	Summary string `json:"summary,omitempty" jsonschema:"Edit summary"`
}

// EditToolResult confirms an edit.
type EditToolResult struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// DeleteToolArgs are the arguments of wikibot_delete.
type DeleteToolArgs struct {
	Titles []string `json:"titles" jsonschema:"Page titles to delete in order"`
	Reason string   `json:"reason,omitempty" jsonschema:"Deletion reason"`
}

// MoveToolArgs are the arguments of wikibot_move.
type MoveToolArgs struct {
	Titles       []string `json:"titles" jsonschema:"Source page titles"`
	Destinations []string `json:"destinations,omitempty" jsonschema:"Explicit destination titles parallel to titles"`
	Find         string   `json:"find,omitempty" jsonschema:"Substring to replace in every source title"`
	Replace      string   `json:"replace,omitempty" jsonschema:"Replacement for the find substring"`
	Prepend      string   `json:"prepend,omitempty" jsonschema:"String prepended to every source title"`
	Append       string   `json:"append,omitempty" jsonschema:"String appended to every source title"`
	Reason       string   `json:"reason,omitempty" jsonschema:"Move reason"`
}

// PurgeToolArgs are the arguments of wikibot_purge.
type PurgeToolArgs struct {
	Titles []string `json:"titles" jsonschema:"Page titles to purge"`
}

// BatchItemReport is one item of a batch mutation report.
type BatchItemReport struct {
	Title string `json:"title"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BatchReport is the per-item outcome of a batch mutation.
type BatchReport struct {
	Action string            `json:"action"`
	Failed int               `json:"failed"`
	Items  []BatchItemReport `json:"items"`
}

func reportFrom(action string, result wiki.BatchResult) BatchReport {
	report := BatchReport{Action: action, Failed: result.Failed()}
	for _, o := range result {
		item := BatchItemReport{Title: o.Title, OK: o.Err == nil}
		if o.Err != nil {
			item.Error = o.Err.Error()
		}
		report.Items = append(report.Items, item)
	}
	return report
}

// ToolServer maps tool specs to wiki client calls.
type ToolServer struct {
	client *wiki.Client
	logger *slog.Logger
}

// NewToolServer creates a tool server over one wiki client.
func NewToolServer(client *wiki.Client, logger *slog.Logger) *ToolServer {
	return &ToolServer{client: client, logger: logger}
}

// RegisterAll registers all tools with the MCP server.
func (h *ToolServer) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("registered tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *ToolServer) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := buildTool(spec)

	switch spec.Method {
	case "List":
		register(h, server, tool, spec, h.list)
	case "Namespaces":
		register(h, server, tool, spec, h.namespaces)
	case "Edit":
		register(h, server, tool, spec, h.edit)
	case "Delete":
		register(h, server, tool, spec, h.delete)
	case "Move":
		register(h, server, tool, spec, h.move)
	case "Purge":
		register(h, server, tool, spec, h.purge)
	default:
		h.logger.Error("unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

func (h *ToolServer) list(ctx context.Context, args ListArgs) (ListResult, error) {
	items, err := h.client.List(ctx, args.Operation, args.Parameter)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Operation: args.Operation, Count: len(items), Items: items}, nil
}

func (h *ToolServer) namespaces(ctx context.Context, _ NamespacesArgs) (NamespacesResult, error) {
	ids, err := h.client.Namespaces(ctx)
	if err != nil {
		return NamespacesResult{}, err
	}
	return NamespacesResult{IDs: ids}, nil
}

func (h *ToolServer) edit(ctx context.Context, args EditToolArgs) (EditToolResult, error) {
	if err := h.loginIfNeeded(ctx); err != nil {
		return EditToolResult{}, err
	}
	if err := h.client.Edit(ctx, wiki.EditArgs{Title: args.Title, Content: args.Content, Summary: args.Summary}); err != nil {
		return EditToolResult{}, err
	}
	return EditToolResult{Title: args.Title, Message: "page saved"}, nil
}

func (h *ToolServer) delete(ctx context.Context, args DeleteToolArgs) (BatchReport, error) {
	if err := h.loginIfNeeded(ctx); err != nil {
		return BatchReport{}, err
	}
	result, err := h.client.Delete(ctx, args.Titles, args.Reason)
	if err != nil {
		return BatchReport{}, err
	}
	return reportFrom("delete", result), nil
}

func (h *ToolServer) move(ctx context.Context, args MoveToolArgs) (BatchReport, error) {
	if err := h.loginIfNeeded(ctx); err != nil {
		return BatchReport{}, err
	}
	result, err := h.client.Move(ctx, wiki.MoveArgs{
		Titles:       args.Titles,
		Destinations: args.Destinations,
		Find:         args.Find,
		Replace:      args.Replace,
		Prepend:      args.Prepend,
		Append:       args.Append,
		Reason:       args.Reason,
	})
	if err != nil {
		return BatchReport{}, err
	}
	return reportFrom("move", result), nil
}

func (h *ToolServer) purge(ctx context.Context, args PurgeToolArgs) (BatchReport, error) {
	result, err := h.client.Purge(ctx, args.Titles)
	if err != nil {
		return BatchReport{}, err
	}
	return reportFrom("purge", result), nil
}

// loginIfNeeded logs in on first mutating call; harmless when already
// authenticated.
func (h *ToolServer) loginIfNeeded(ctx context.Context) error {
	if h.client.LoggedIn() {
		return nil
	}
	return h.client.Login(ctx)
}

// buildTool creates an mcp.Tool from a ToolSpec.
func buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register wraps one client method with panic recovery, tracing, and
// logging, then adds it to the MCP server.
func register[Args, Result any](
	h *ToolServer,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (*mcp.CallToolResult, Result, error) {
		defer h.recoverPanic(spec.Name)

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()

		span.SetAttributes(
			attribute.String("mcp.tool.name", spec.Name),
			attribute.String("mcp.tool.category", spec.Category),
			attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
		)

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start)

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration.Seconds()))

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			h.logger.Warn("tool failed", "tool", spec.Name, "duration", duration, "error", err)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}

		span.SetStatus(codes.Ok, "")
		h.logger.Debug("tool succeeded", "tool", spec.Name, "duration", duration)
		return nil, result, nil
	})
}

// recoverPanic keeps one misbehaving tool call from taking the server down.
func (h *ToolServer) recoverPanic(tool string) {
	if r := recover(); r != nil {
		h.logger.Error("panic recovered",
			"tool", tool,
			"panic", r,
			"stack", string(debug.Stack()))
	}
}
