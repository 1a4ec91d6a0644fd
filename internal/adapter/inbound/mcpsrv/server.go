// Package mcpsrv registers the Beacon tools on a mark3labs/mcp-go server
// and adapts tool invocations to the use case layer.
package mcpsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/beaconlabs/beacon-mcp/internal/usecase"
)

// Handlers bundles the tool handlers and their use case dependencies.
type Handlers struct {
	query    *usecase.QueryUseCase
	datasets *usecase.ListDatasetsUseCase
	schema   *usecase.DatasetSchemaUseCase
	logger   *slog.Logger
}

// NewHandlers creates the tool handler set.
func NewHandlers(
	query *usecase.QueryUseCase,
	datasets *usecase.ListDatasetsUseCase,
	schema *usecase.DatasetSchemaUseCase,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		query:    query,
		datasets: datasets,
		schema:   schema,
		logger:   logger.With("component", "mcpsrv"),
	}
}

// Register adds all tools to the MCP server.
func (h *Handlers) Register(srv *server.MCPServer) {
	srv.AddTool(queryTool(), h.HandleQuery)
	srv.AddTool(listDatasetsTool(), h.HandleListDatasets)
	srv.AddTool(datasetSchemaTool(), h.HandleDatasetSchema)
	h.logger.Info("Registered MCP tools", slog.Int("count", 3))
}

func queryTool() mcp.Tool {
	return mcp.NewTool("query",
		mcp.WithDescription("Run a query against Beacon datasets using the pipeline query language. Use get_dataset_schema first to learn the fields you can reference."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description(`Pipeline query, e.g. ['http-logs'] | where status == 500 | count`),
		),
		mcp.WithString("startTime",
			mcp.Description("Inclusive start of the queried time range, RFC3339 (e.g. 2026-08-29T00:00:00Z). Optional."),
		),
		mcp.WithString("endTime",
			mcp.Description("Exclusive end of the queried time range, RFC3339. Optional."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
	)
}

func listDatasetsTool() mcp.Tool {
	return mcp.NewTool("list_datasets",
		mcp.WithDescription("List all Beacon datasets visible to the configured API token."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func datasetSchemaTool() mcp.Tool {
	return mcp.NewTool("get_dataset_schema",
		mcp.WithDescription("Get the schema of a dataset as a compact nested type description."),
		mcp.WithString("dataset",
			mcp.Required(),
			mcp.Description("Name of the dataset, as returned by list_datasets."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// HandleQuery implements the query tool.
func (h *Handlers) HandleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	startTime := request.GetString("startTime", "")
	endTime := request.GetString("endTime", "")

	result, err := h.query.Execute(ctx, q, startTime, endTime)
	if err != nil {
		return h.errorResult("query", err), nil
	}
	return h.jsonResult(result)
}

// HandleListDatasets implements the list_datasets tool.
func (h *Handlers) HandleListDatasets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	datasets, err := h.datasets.Execute(ctx)
	if err != nil {
		return h.errorResult("list_datasets", err), nil
	}
	return h.jsonResult(datasets)
}

// HandleDatasetSchema implements the get_dataset_schema tool.
func (h *Handlers) HandleDatasetSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataset, err := request.RequireString("dataset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	schema, err := h.schema.Execute(ctx, dataset)
	if err != nil {
		return h.errorResult("get_dataset_schema", err), nil
	}
	return h.jsonResult(schema)
}

// errorResult maps a use case error onto a tool error result. Rate limit
// denials get an explicit hint so the agent backs off instead of retrying
// immediately.
func (h *Handlers) errorResult(tool string, err error) *mcp.CallToolResult {
	h.logger.Warn("Tool invocation failed", slog.String("tool", tool), slog.Any("error", err))
	if errors.Is(err, usecase.ErrRateLimited) {
		return mcp.NewToolResultError(fmt.Sprintf("%s: rate limit exceeded, wait before retrying", tool))
	}
	return mcp.NewToolResultError(err.Error())
}

func (h *Handlers) jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
