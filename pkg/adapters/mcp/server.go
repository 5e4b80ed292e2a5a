package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tend"
	"github.com/aretw0/tend/internal/logging"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/observable"
	"github.com/aretw0/tend/pkg/tasks"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	ItemsURI   = "tend://items"
	ServersURI = "tend://servers"
)

// App defines what the MCP server needs from tend.
type App interface {
	Tasks() *tasks.Manager
	Servers() *observable.Store[int]
	Region() string
}

var _ App = (*tend.App)(nil)

// Server wraps a tend App and exposes it as an MCP Server.
type Server struct {
	app       App
	logger    *slog.Logger
	mcpServer *server.MCPServer
	tools     []server.ServerTool
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(app App, opts ...Option) *Server {
	s := &Server{
		app:       app,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("tend-mcp", strings.TrimSpace(tend.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ToolNames lists the registered tools in registration order.
func (s *Server) ToolNames() []string {
	names := make([]string, len(s.tools))
	for i, t := range s.tools {
		names[i] = t.Tool.Name
	}
	return names
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.tools = []server.ServerTool{
		{
			Tool: mcp.NewTool("list_items",
				mcp.WithDescription("List to-do items. Incomplete items come first, newest first within each group."),
			),
			Handler: s.handleListItems,
		},
		{
			Tool: mcp.NewTool("add_item",
				mcp.WithDescription("Add a to-do item. The ID is assigned automatically."),
				mcp.WithString("name", mcp.Required(), mcp.Description("Item name")),
				mcp.WithBoolean("is_completed", mcp.Description("Store the item as already completed")),
			),
			Handler: s.handleAddItem,
		},
		{
			Tool: mcp.NewTool("complete_item",
				mcp.WithDescription("Mark a to-do item as completed."),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Item ID")),
			),
			Handler: s.setCompletedHandler(true),
		},
		{
			Tool: mcp.NewTool("reopen_item",
				mcp.WithDescription("Mark a to-do item as not completed."),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Item ID")),
			),
			Handler: s.setCompletedHandler(false),
		},
		{
			Tool: mcp.NewTool("delete_item",
				mcp.WithDescription("Delete a to-do item. Its ID is never reused."),
				mcp.WithNumber("id", mcp.Required(), mcp.Description("Item ID")),
			),
			Handler: s.handleDeleteItem,
		},
		{
			Tool: mcp.NewTool("get_servers",
				mcp.WithDescription("Get the number of online servers."),
			),
			Handler: s.handleGetServers,
		},
		{
			Tool: mcp.NewTool("set_servers",
				mcp.WithDescription("Set the number of online servers and notify every observer."),
				mcp.WithNumber("online", mcp.Required(), mcp.Description("Online servers")),
			),
			Handler: s.handleSetServers,
		},
	}
	s.mcpServer.AddTools(s.tools...)
}

func (s *Server) handleListItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.app.Tasks().Items(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if items == nil {
		items = []domain.Item{}
	}
	return jsonResult(items)
}

func (s *Server) handleAddItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item := domain.Item{
		Name:        name,
		IsCompleted: request.GetBool("is_completed", false),
	}

	stored, err := s.app.Tasks().AddItem(ctx, item)
	if err != nil {
		s.logger.Warn("MCP add_item failed", "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("add failed: %v", err)), nil
	}
	return jsonResult(stored)
}

func (s *Server) setCompletedHandler(completed bool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		mgr := s.app.Tasks()
		op := mgr.Reopen
		if completed {
			op = mgr.Complete
		}
		item, err := op(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
		}
		return jsonResult(item)
	}
}

func (s *Server) handleDeleteItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.app.Tasks().Remove(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted item %d", id)), nil
}

func (s *Server) handleGetServers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.status())
}

func (s *Server) handleSetServers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	online, err := request.RequireInt("online")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.app.Servers().Set(online)
	return jsonResult(s.status())
}

func (s *Server) status() domain.ServerStatus {
	return domain.ServerStatus{Region: s.app.Region(), Online: s.app.Servers().Get()}
}

func (s *Server) registerResources() {
	// EXPOSE: tend://items
	s.mcpServer.AddResource(mcp.NewResource(ItemsURI, "To-do items",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		items, err := s.app.Tasks().Items(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list items: %w", err)
		}
		return jsonResource(ItemsURI, items)
	})

	// EXPOSE: tend://servers
	s.mcpServer.AddResource(mcp.NewResource(ServersURI, "Online servers",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource(ServersURI, s.status())
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
