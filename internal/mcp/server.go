// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the to-do list as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/pkg/models"
)

// Server wraps the task store and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	store       core.TaskStore
	metricsCalc observability.MetricsCalculator
}

// NewServer creates a new MCP server over store. metricsCalc may be nil if
// activity events are disabled.
func NewServer(store core.TaskStore, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		store:       store,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "todo", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled. Pending writes are flushed before returning.
func (s *Server) Run(ctx context.Context) error {
	defer s.store.Flush()
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	ID        string `json:"id"`
	Position  int    `json:"position"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type listTasksInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"which tasks to return: all (default), open, or done"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type addTaskInput struct {
	Text string `json:"text" jsonschema:"the task text; surrounding whitespace is trimmed"`
}

type taskRefInput struct {
	Ref string `json:"ref" jsonschema:"task ID, unique ID prefix, or 1-based position in the list"`
}

type editTaskInput struct {
	Ref  string `json:"ref" jsonschema:"task ID, unique ID prefix, or 1-based position in the list"`
	Text string `json:"text" jsonschema:"the new task text"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated   int    `json:"tasks_created"`
	TasksCompleted int    `json:"tasks_completed"`
	TasksReopened  int    `json:"tasks_reopened"`
	TasksEdited    int    `json:"tasks_edited"`
	TasksDeleted   int    `json:"tasks_deleted"`
	EventCount     int    `json:"event_count"`
	OldestEvent    string `json:"oldest_event,omitempty"`
	NewestEvent    string `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks in display order, optionally only open or only done ones.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Add a new incomplete task. Blank text is rejected.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "toggle_task",
		Description: "Flip a task between done and not done.",
	}, s.handleToggleTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "edit_task",
		Description: "Replace the text of a task.",
	}, s.handleEditTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get activity counts from the event log: tasks created, completed, reopened, edited and deleted.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	var keep func(models.Task) bool
	switch input.Filter {
	case "", "all":
		keep = func(models.Task) bool { return true }
	case "open":
		keep = func(t models.Task) bool { return !t.Completed }
	case "done":
		keep = func(t models.Task) bool { return t.Completed }
	default:
		return errorResult(fmt.Sprintf("invalid filter %q: must be one of all, open, done", input.Filter)), listTasksOutput{}, nil
	}

	out := listTasksOutput{Tasks: []taskOutput{}}
	for i, t := range s.store.Tasks() {
		if keep(t) {
			out.Tasks = append(out.Tasks, taskToOutput(t, i+1))
		}
	}
	out.Count = len(out.Tasks)
	return nil, out, nil
}

func (s *Server) handleAddTask(_ context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	task, ok := s.store.Create(input.Text)
	if !ok {
		return errorResult("text is required"), taskOutput{}, nil
	}
	return nil, s.output(task.ID), nil
}

func (s *Server) handleToggleTask(_ context.Context, _ *gomcp.CallToolRequest, input taskRefInput) (*gomcp.CallToolResult, taskOutput, error) {
	task, res := s.resolve(input.Ref)
	if res != nil {
		return res, taskOutput{}, nil
	}
	s.store.Toggle(task.ID)
	return nil, s.output(task.ID), nil
}

func (s *Server) handleDeleteTask(_ context.Context, _ *gomcp.CallToolRequest, input taskRefInput) (*gomcp.CallToolResult, messageOutput, error) {
	task, res := s.resolve(input.Ref)
	if res != nil {
		return res, messageOutput{}, nil
	}
	s.store.Delete(task.ID)
	return nil, messageOutput{Message: fmt.Sprintf("deleted task %s (%s)", task.ID, task.Text)}, nil
}

func (s *Server) handleEditTask(_ context.Context, _ *gomcp.CallToolRequest, input editTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return errorResult("text is required"), taskOutput{}, nil
	}
	task, res := s.resolve(input.Ref)
	if res != nil {
		return res, taskOutput{}, nil
	}
	if !s.store.Edit(task.ID, input.Text) {
		return errorResult(fmt.Sprintf("task %s no longer exists", task.ID)), taskOutput{}, nil
	}
	return nil, s.output(task.ID), nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (events may be disabled)"), metricsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := observability.ParseSince(sinceStr, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), metricsOutput{}, nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), metricsOutput{}, nil
	}

	out := metricsOutput{
		TasksCreated:   metrics.TasksCreated,
		TasksCompleted: metrics.TasksCompleted,
		TasksReopened:  metrics.TasksReopened,
		TasksEdited:    metrics.TasksEdited,
		TasksDeleted:   metrics.TasksDeleted,
		EventCount:     metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

// resolve looks up ref and turns a failure into an error result.
func (s *Server) resolve(ref string) (models.Task, *gomcp.CallToolResult) {
	if strings.TrimSpace(ref) == "" {
		return models.Task{}, errorResult("ref is required")
	}
	task, err := s.store.Resolve(ref)
	if err != nil {
		return models.Task{}, errorResult(err.Error())
	}
	return task, nil
}

// output reports the current state and position of the task with id.
func (s *Server) output(id string) taskOutput {
	for i, t := range s.store.Tasks() {
		if t.ID == id {
			return taskToOutput(t, i+1)
		}
	}
	return taskOutput{ID: id}
}

func taskToOutput(t models.Task, position int) taskOutput {
	return taskOutput{
		ID:        t.ID,
		Position:  position,
		Text:      t.Text,
		Completed: t.Completed,
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
