// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/evanschultz/taskboard/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// statusArgValues lists the accepted status argument spellings.
var statusArgValues = []string{"todo", "in_progress", "review", "completed"}

// NewHandler builds one stateless MCP adapter exposing the taskboard tools.
func NewHandler(cfg Config, service common.Service) (*Handler, error) {
	if service == nil {
		return nil, fmt.Errorf("task service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerTaskTools(mcpSrv, service)
	registerInsightTools(mcpSrv, service, service)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "taskboard"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerTaskTools registers task list/get/create/status tools.
func registerTaskTools(srv *mcpserver.MCPServer, tasks common.TaskService) {
	srv.AddTool(
		mcp.NewTool(
			"taskboard.list_tasks",
			mcp.WithDescription("List tasks. Values within one filter are ORed; filters are ANDed."),
			mcp.WithArray("priority", mcp.Description("Priority filter (high, medium, low)"), mcp.WithStringItems()),
			mcp.WithArray("status", mcp.Description("Status filter"), mcp.WithStringItems()),
			mcp.WithArray("assignee", mcp.Description("Assignee name filter"), mcp.WithStringItems()),
			mcp.WithArray("project", mcp.Description("Project filter"), mcp.WithStringItems()),
			mcp.WithString("query", mcp.Description("Case-insensitive title search")),
			mcp.WithString("from", mcp.Description("Schedule window start (YYYY-MM-DD)")),
			mcp.WithString("to", mcp.Description("Schedule window end (YYYY-MM-DD)")),
			mcp.WithString("sort", mcp.Description("Sort column"), mcp.Enum("title", "assignee", "priority", "status", "project", "start", "end", "progress")),
			mcp.WithString("direction", mcp.Description("asc or desc"), mcp.Enum("asc", "desc")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := tasks.ListTasks(ctx, common.ListTasksRequest{
				Priorities: req.GetStringSlice("priority", nil),
				Statuses:   req.GetStringSlice("status", nil),
				Assignees:  req.GetStringSlice("assignee", nil),
				Projects:   req.GetStringSlice("project", nil),
				Query:      req.GetString("query", ""),
				From:       req.GetString("from", ""),
				To:         req.GetString("to", ""),
				Sort:       req.GetString("sort", ""),
				Direction:  req.GetString("direction", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"tasks": rows})
			if err != nil {
				return nil, fmt.Errorf("encode list_tasks result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.get_task",
			mcp.WithDescription("Return one task by id."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := tasks.GetTask(ctx, taskID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode get_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.create_task",
			mcp.WithDescription("Create one task. Invalid fields are reported together."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("id", mcp.Description("Optional explicit id")),
			mcp.WithString("assignee", mcp.Description("Assignee display name")),
			mcp.WithString("priority", mcp.Description("High, Medium or Low")),
			mcp.WithString("status", mcp.Description("Initial status"), mcp.Enum(statusArgValues...)),
			mcp.WithString("start_date", mcp.Description("Start date (YYYY-MM-DD)")),
			mcp.WithString("end_date", mcp.Description("End date (YYYY-MM-DD)")),
			mcp.WithString("project", mcp.Description("Project name")),
			mcp.WithNumber("progress", mcp.Description("Progress percent 0-100")),
			mcp.WithNumber("subtasks", mcp.Description("Total subtasks")),
			mcp.WithNumber("completed_subtasks", mcp.Description("Completed subtasks")),
			mcp.WithString("description", mcp.Description("Markdown description")),
			mcp.WithString("time_estimated", mcp.Description("Free-form estimate such as 8h")),
			mcp.WithString("actor", mcp.Description("Name recorded in the activity log")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args struct {
				common.CreateTaskRequest
				Actor string `json:"actor"`
			}
			if err := req.BindArguments(&args); err != nil {
				return invalidRequestToolResult(err), nil
			}
			if strings.TrimSpace(args.Title) == "" {
				return mcp.NewToolResultError(`invalid_request: required argument "title" not found`), nil
			}
			in := args.CreateTaskRequest
			in.Actor = args.Actor
			task, err := tasks.CreateTask(ctx, in)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode create_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.set_task_status",
			mcp.WithDescription("Move one task to a status. Any status may follow any other."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Target status"), mcp.Enum(statusArgValues...)),
			mcp.WithString("actor", mcp.Description("Name recorded in the activity log")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status, err := req.RequireString("status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := tasks.SetTaskStatus(ctx, common.SetTaskStatusRequest{
				TaskID: taskID,
				Status: status,
				Actor:  req.GetString("actor", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode set_task_status result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.analytics",
			mcp.WithDescription("Return completion totals and chart series for every task."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			summary, err := tasks.Analytics(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(summary)
			if err != nil {
				return nil, fmt.Errorf("encode analytics result: %w", err)
			}
			return result, nil
		},
	)
}

// registerInsightTools registers notification and activity read tools.
func registerInsightTools(srv *mcpserver.MCPServer, notes common.NotificationService, activity common.ActivityService) {
	srv.AddTool(
		mcp.NewTool(
			"taskboard.list_notifications",
			mcp.WithDescription("List notifications newest first."),
			mcp.WithBoolean("unread_only", mcp.Description("Only return unread notifications")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := notes.ListNotifications(ctx, req.GetBool("unread_only", false))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"notifications": rows})
			if err != nil {
				return nil, fmt.Errorf("encode list_notifications result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"taskboard.list_activity",
			mcp.WithDescription("List recent change events, optionally for one task."),
			mcp.WithString("task_id", mcp.Description("Optional task identifier")),
			mcp.WithNumber("limit", mcp.Description("Maximum rows to return")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			rows, err := activity.ListActivity(ctx, common.ListActivityRequest{
				TaskID: req.GetString("task_id", ""),
				Limit:  req.GetInt("limit", 25),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"events": rows})
			if err != nil {
				return nil, fmt.Errorf("encode list_activity result: %w", err)
			}
			return result, nil
		},
	)
}

// invalidRequestToolResult reports undecodable tool arguments.
func invalidRequestToolResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("invalid_request: " + err.Error())
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	var fieldErrs *common.FieldErrors
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.As(err, &fieldErrs):
		keys := make([]string, 0, len(fieldErrs.Fields))
		for key := range fieldErrs.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, key+" "+fieldErrs.Fields[key])
		}
		return mcp.NewToolResultError("validation_failed: " + strings.Join(parts, "; "))
	case errors.Is(err, common.ErrInvalidRequest):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	case errors.Is(err, common.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
