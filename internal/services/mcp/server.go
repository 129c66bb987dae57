// Package mcp exposes repository rendering as a Model Context Protocol tool,
// served over stdio or streamable HTTP.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/rtt/internal/commands"
	"github.com/temirov/rtt/internal/filter"
	"github.com/temirov/rtt/internal/source"
	"github.com/temirov/rtt/internal/utils"
)

const (
	// RenderRepositoryToolName names the tool that renders a repository document.
	RenderRepositoryToolName = "render_repository"

	renderRepositoryDescription = "Render a remote or local repository into one text document: a tree of the selected files followed by their contents"
	defaultServerName           = "rtt"
	defaultShutdownDuration     = 5 * time.Second
	headerContentType           = "Content-Type"
	mimeTypeJSON                = "application/json"
	capabilitiesPath            = "/capabilities"
	mcpPath                     = "/mcp"
	errorFieldName              = "error"

	errorNilRendererMessage = "mcp server requires a renderer"
	errorListenFormat       = "listen on %s: %w"
	errorServeFormat        = "serve MCP: %w"
	errorShutdownFormat     = "shutdown MCP: %w"
	errorStdioFormat        = "serve MCP over stdio: %w"
	errorRenderFormat       = "render %s: %w"
	renderedSummaryFormat   = "Rendered %d files from %s"

	infoStdioMessage    = "serving MCP over stdio"
	infoHTTPMessage     = "serving MCP over HTTP"
	infoToolCallMessage = "tool called"
	logFieldAddress     = "address"
	logFieldTool        = "tool"
	logFieldSource      = "source"
)

// Renderer produces a repository document.
type Renderer interface {
	Generate(ctx context.Context, options commands.GenerateOptions) (commands.Result, error)
}

// Capability describes a tool exposed by the server.
type Capability struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Config defines runtime options for the MCP server.
type Config struct {
	Name            string
	Version         string
	ShutdownTimeout time.Duration
	Logger          *zap.Logger
}

// RenderRepositoryInput is the argument object of the render_repository tool.
type RenderRepositoryInput struct {
	Source           string   `json:"source" jsonschema:"Repository as owner/name, a clone URL, or a local directory path"`
	SourceType       string   `json:"sourceType,omitempty" jsonschema:"remote (default) or local"`
	IgnoreExtensions []string `json:"ignoreExtensions,omitempty" jsonschema:"Additional file name suffixes to skip"`
	IgnoreFolders    []string `json:"ignoreFolders,omitempty" jsonschema:"Folder name patterns to exclude"`
	IncludeFolders   []string `json:"includeFolders,omitempty" jsonschema:"Folder name patterns whose files are included; exclusive with ignoreFolders"`
	Branch           string   `json:"branch,omitempty" jsonschema:"Branch to clone for remote sources"`
}

// RenderRepositoryOutput is the structured result of the render_repository tool.
type RenderRepositoryOutput struct {
	Document    string   `json:"document" jsonschema:"Rendered document"`
	Files       []string `json:"files" jsonschema:"Selected files in document order"`
	FailedFiles []string `json:"failedFiles,omitempty" jsonschema:"Files whose content could not be read"`
	TotalFiles  int      `json:"totalFiles" jsonschema:"Number of files rendered with content"`
	TotalBytes  int64    `json:"totalBytes" jsonschema:"Bytes of file content rendered"`
}

// Server serves the render_repository tool.
type Server struct {
	config    Config
	renderer  Renderer
	mcpServer *mcp.Server
	logger    *zap.Logger
}

// NewServer creates a Server with defaults applied and its tools registered.
func NewServer(config Config, renderer Renderer) (*Server, error) {
	if renderer == nil {
		return nil, errors.New(errorNilRendererMessage)
	}
	normalized := config
	if normalized.Name == "" {
		normalized.Name = defaultServerName
	}
	if normalized.ShutdownTimeout <= 0 {
		normalized.ShutdownTimeout = defaultShutdownDuration
	}
	server := &Server{
		config:   normalized,
		renderer: renderer,
		logger:   utils.LoggerOrNop(normalized.Logger),
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    normalized.Name,
			Version: normalized.Version,
		}, nil),
	}
	mcp.AddTool(server.mcpServer, &mcp.Tool{
		Name:        RenderRepositoryToolName,
		Description: renderRepositoryDescription,
	}, server.handleRenderRepository)
	return server, nil
}

// Capabilities lists the tools the server exposes.
func (server *Server) Capabilities() []Capability {
	return []Capability{{Name: RenderRepositoryToolName, Description: renderRepositoryDescription}}
}

// Run serves MCP over stdin and stdout until ctx is canceled or the client disconnects.
func (server *Server) Run(ctx context.Context) error {
	server.logger.Info(infoStdioMessage)
	if runErr := server.mcpServer.Run(ctx, &mcp.StdioTransport{}); runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf(errorStdioFormat, runErr)
	}
	return nil
}

// RunHTTP serves MCP over streamable HTTP on address and blocks until ctx is canceled.
// The notify callback receives the bound address once the listener is active.
func (server *Server) RunHTTP(ctx context.Context, address string, notify func(string)) error {
	listener, listenErr := net.Listen("tcp", address)
	if listenErr != nil {
		return fmt.Errorf(errorListenFormat, address, listenErr)
	}
	actualAddress := listener.Addr().String()

	router := http.NewServeMux()
	router.HandleFunc(capabilitiesPath, server.handleCapabilities)
	router.Handle(mcpPath, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server.mcpServer
	}, nil))

	httpServer := &http.Server{Handler: router}
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		serveErr := httpServer.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf(errorServeFormat, serveErr)
		}
		return nil
	})

	server.logger.Info(infoHTTPMessage, zap.String(logFieldAddress, actualAddress))
	if notify != nil {
		notify(actualAddress)
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.config.ShutdownTimeout)
		defer cancel()
		shutdownErr := httpServer.Shutdown(shutdownCtx)
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) && !errors.Is(shutdownErr, http.ErrServerClosed) {
			return fmt.Errorf(errorShutdownFormat, shutdownErr)
		}
		return nil
	})

	return group.Wait()
}

// RenderRepository renders the repository described by input.
func (server *Server) RenderRepository(ctx context.Context, input RenderRepositoryInput) (RenderRepositoryOutput, error) {
	server.logger.Debug(infoToolCallMessage, zap.String(logFieldTool, RenderRepositoryToolName), zap.String(logFieldSource, input.Source))
	result, generateErr := server.renderer.Generate(ctx, commands.GenerateOptions{
		Source: source.Request{
			Source:     input.Source,
			SourceType: input.SourceType,
			Branch:     input.Branch,
		},
		Filter: filter.FilterOptions{
			IgnoreExtensions: input.IgnoreExtensions,
			IgnoreFolders:    input.IgnoreFolders,
			IncludeFolders:   input.IncludeFolders,
		},
	})
	if generateErr != nil {
		return RenderRepositoryOutput{}, fmt.Errorf(errorRenderFormat, input.Source, generateErr)
	}
	files := result.Files
	if files == nil {
		files = []string{}
	}
	return RenderRepositoryOutput{
		Document:    result.Document,
		Files:       files,
		FailedFiles: result.FailedFiles,
		TotalFiles:  result.Summary.TotalFiles,
		TotalBytes:  result.Summary.TotalBytes,
	}, nil
}

func (server *Server) handleRenderRepository(ctx context.Context, _ *mcp.CallToolRequest, input RenderRepositoryInput) (*mcp.CallToolResult, RenderRepositoryOutput, error) {
	output, renderErr := server.RenderRepository(ctx, input)
	if renderErr != nil {
		return &mcp.CallToolResult{IsError: true}, RenderRepositoryOutput{}, renderErr
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: output.Document},
			&mcp.TextContent{Text: fmt.Sprintf(renderedSummaryFormat, output.TotalFiles, input.Source)},
		},
	}, output, nil
}

func (server *Server) handleCapabilities(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	payload := struct {
		Capabilities []Capability `json:"capabilities"`
	}{Capabilities: server.Capabilities()}
	server.writeJSON(writer, http.StatusOK, payload)
}

func (server *Server) writeJSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	var buffer bytes.Buffer
	if encodeErr := json.NewEncoder(&buffer).Encode(payload); encodeErr != nil {
		fallback := map[string]string{errorFieldName: fmt.Sprintf("encode response: %v", encodeErr)}
		writer.Header().Set(headerContentType, mimeTypeJSON)
		writer.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(writer).Encode(fallback)
		return
	}
	writer.Header().Set(headerContentType, mimeTypeJSON)
	writer.WriteHeader(statusCode)
	_, _ = writer.Write(buffer.Bytes())
}
