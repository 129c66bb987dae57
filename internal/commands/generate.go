// Package commands wires source acquisition, file discovery, tree building, and
// document rendering into a single run.
package commands

import (
	"context"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/rtt/internal/filter"
	"github.com/temirov/rtt/internal/output"
	"github.com/temirov/rtt/internal/source"
	"github.com/temirov/rtt/internal/tokenizer"
	"github.com/temirov/rtt/internal/tree"
	"github.com/temirov/rtt/internal/types"
	"github.com/temirov/rtt/internal/utils"
	"github.com/temirov/rtt/internal/walker"
)

const (
	infoFilesSelectedMessage = "files selected"
	warningReleaseMessage    = "unable to release source"
	warningTokenCountMessage = "unable to count tokens"
	logFieldFiles            = "files"
	logFieldRoot             = "root"
	logFieldSource           = "source"
)

// Dependencies are the collaborators of a Generator. FileSystem and Cloner are
// required; Logger and TokenCounter are optional.
type Dependencies struct {
	FileSystem   afero.Fs
	Cloner       source.Cloner
	Logger       *zap.Logger
	TokenCounter tokenizer.Counter
}

// GenerateOptions describes one run.
type GenerateOptions struct {
	Source source.Request
	Filter filter.FilterOptions
}

// Result is the outcome of a successful run.
type Result struct {
	Document    string
	Files       []string
	FailedFiles []string
	Summary     types.Summary
}

// Generator produces documents. It holds no per-run state.
type Generator struct {
	acquirer     *source.Acquirer
	sourceWalker walker.Walker
	renderer     output.DocumentRenderer
	tokenCounter tokenizer.Counter
	logger       *zap.Logger
}

// NewGenerator constructs a Generator from its dependencies.
func NewGenerator(dependencies Dependencies) *Generator {
	logger := utils.LoggerOrNop(dependencies.Logger)
	return &Generator{
		acquirer:     source.NewAcquirer(dependencies.FileSystem, dependencies.Cloner, logger),
		sourceWalker: walker.NewWalker(dependencies.FileSystem, logger),
		renderer:     output.NewDocumentRenderer(dependencies.FileSystem, logger),
		tokenCounter: dependencies.TokenCounter,
		logger:       logger,
	}
}

// Generate validates the filter configuration, acquires the source, selects
// files, and renders the document. Configuration conflicts are reported before
// the source is touched. Any fatal error yields an empty Result, and temporary
// storage created for the source is released on every path.
func (generator *Generator) Generate(ctx context.Context, options GenerateOptions) (Result, error) {
	filterConfig, filterError := filter.NewFilterConfig(options.Filter)
	if filterError != nil {
		return Result{}, filterError
	}

	workspace, acquireError := generator.acquirer.Acquire(ctx, options.Source)
	if acquireError != nil {
		return Result{}, acquireError
	}
	defer func() {
		if releaseError := workspace.Release(); releaseError != nil {
			generator.logger.Warn(warningReleaseMessage, zap.String(logFieldRoot, workspace.RootPath), zap.Error(releaseError))
		}
	}()

	includedFiles, walkError := generator.sourceWalker.Walk(workspace.RootPath, filterConfig)
	if walkError != nil {
		return Result{}, walkError
	}
	generator.logger.Info(infoFilesSelectedMessage, zap.String(logFieldSource, workspace.Label), zap.Int(logFieldFiles, len(includedFiles)))

	rendering := generator.renderer.Render(output.DocumentInput{
		Label:    workspace.Label,
		RootPath: workspace.RootPath,
		Files:    includedFiles,
		Tree:     tree.Build(includedFiles),
	})

	result := Result{
		Document:    rendering.Document,
		Files:       includedFiles,
		FailedFiles: rendering.FailedFiles,
		Summary: types.Summary{
			TotalFiles: len(includedFiles) - len(rendering.FailedFiles),
			TotalBytes: rendering.ContentBytes,
		},
	}
	if generator.tokenCounter != nil {
		countResult, countError := tokenizer.CountDocument(generator.tokenCounter, rendering.Document)
		if countError != nil {
			generator.logger.Warn(warningTokenCountMessage, zap.Error(countError))
		} else {
			result.Summary.Tokens = countResult.Tokens
			result.Summary.Model = countResult.Model
		}
	}
	return result, nil
}
