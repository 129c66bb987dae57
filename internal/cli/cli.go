// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/rtt/internal/commands"
	"github.com/temirov/rtt/internal/config"
	"github.com/temirov/rtt/internal/filter"
	"github.com/temirov/rtt/internal/services/clipboard"
	"github.com/temirov/rtt/internal/services/mcp"
	"github.com/temirov/rtt/internal/source"
	"github.com/temirov/rtt/internal/tokenizer"
	"github.com/temirov/rtt/internal/types"
	"github.com/temirov/rtt/internal/utils"
)

const (
	sourceTypeFlagName       = "source-type"
	sourceTypeFlagShorthand  = "t"
	ignoreExtensionsFlagName = "ignore-extensions"
	ignoreExtensionsShort    = "i"
	ignoreFoldersFlagName    = "ignore-folders"
	ignoreFoldersShort       = "f"
	includeFoldersFlagName   = "include-folders"
	includeFoldersShort      = "d"
	outputFileFlagName       = "output-file"
	outputFileShort          = "o"
	clipboardFlagName        = "clipboard"
	tokensFlagName           = "tokens"
	modelFlagName            = "model"
	depthFlagName            = "depth"
	branchFlagName           = "branch"
	configFlagName           = "config"
	verboseFlagName          = "verbose"
	versionFlagName          = "version"
	globalFlagName           = "global"
	forceFlagName            = "force"
	listenFlagName           = "listen"

	sourceTypeFlagDescription       = "source type: remote (owner/name or clone URL) or local (directory path)"
	ignoreExtensionsFlagDescription = "additional file suffixes to ignore (repeatable, comma separated)"
	ignoreFoldersFlagDescription    = "folder name patterns to exclude (repeatable, comma separated)"
	includeFoldersFlagDescription   = "folder name patterns whose files are included (repeatable, comma separated)"
	outputFileFlagDescription       = "write the document to this file instead of stdout"
	clipboardFlagDescription        = "copy the document to the system clipboard"
	tokensFlagDescription           = "log an estimated token count of the document"
	modelFlagDescription            = "tokenizer model to use for token counting"
	depthFlagDescription            = "clone depth for remote sources (0 clones full history)"
	branchFlagDescription           = "branch to clone for remote sources"
	configFlagDescription           = "path to a configuration file replacing ./" + utils.ConfigFileName
	verboseFlagDescription          = "enable debug logging"
	versionFlagDescription          = "display application version"
	globalFlagDescription           = "write the configuration under the home directory"
	forceFlagDescription            = "overwrite an existing configuration file"
	listenFlagDescription           = "serve streamable HTTP on this address instead of stdio"

	rootUse              = "rtt <source>"
	rootShortDescription = "render a repository into a single text document"
	rootLongDescription  = `rtt renders a repository into one text document: a tree of the selected files
followed by the content of each file. The source is a GitHub owner/name, a clone
URL, or, with --source-type local, a directory path.
Use -i, -f and -d to select files, -o to write to a file, and --clipboard to copy the result.`
	rootUsageExample = `  # Render a GitHub repository to stdout
  rtt spf13/cobra

  # Render only files under src folders of a local checkout into a file
  rtt -t local -d src -o prompt.txt .

  # Skip logs and build output, estimate tokens
  rtt owner/name -i .log,.tmp -f build -f dist --tokens`
	initUse                = types.CommandInit
	initShortDescription   = "write a default " + utils.ConfigFileName + " configuration"
	mcpUse                 = types.CommandMCP
	mcpShortDescription    = "serve the render_repository tool over the Model Context Protocol"
	versionTemplate        = "rtt version: %s\n"
	defaultFilePermissions = 0o644

	errorWriteOutputFormat     = "write document to %s: %w"
	promptWrittenFormat        = "Prompt written to %s"
	configurationWrittenFormat = "Configuration written to %s"
	infoClipboardMessage       = "document copied to clipboard"
	infoSummaryMessage         = "document rendered"
	infoMCPListeningFormat     = "MCP listening on %s"
	warningClipboardMessage    = "unable to copy document to clipboard"
	warningTokenizerMessage    = "unable to initialize tokenizer"
	warningFailedFilesMessage  = "some files could not be read"
	logFieldFiles              = "files"
	logFieldSize               = "size"
	logFieldTokens             = "tokens"
	logFieldModel              = "model"
	logFieldFailed             = "failed"
)

// Dependencies are the collaborators commands are built from. Zero values
// select the system implementations.
type Dependencies struct {
	FileSystem       afero.Fs
	Cloner           source.Cloner
	Copier           clipboard.Copier
	Stdout           io.Writer
	WorkingDirectory string
	LoggerFactory    func(verbose bool) (*zap.Logger, error)
	CounterFactory   func(config tokenizer.Config) (tokenizer.Counter, string, error)
}

func (dependencies Dependencies) withDefaults() Dependencies {
	resolved := dependencies
	if resolved.FileSystem == nil {
		resolved.FileSystem = afero.NewOsFs()
	}
	if resolved.Cloner == nil {
		resolved.Cloner = source.GitCloner{}
	}
	if resolved.Copier == nil {
		resolved.Copier = clipboard.NewService()
	}
	if resolved.Stdout == nil {
		resolved.Stdout = os.Stdout
	}
	if resolved.LoggerFactory == nil {
		resolved.LoggerFactory = utils.NewApplicationLogger
	}
	if resolved.CounterFactory == nil {
		resolved.CounterFactory = tokenizer.NewCounter
	}
	return resolved
}

// renderFlags holds the values of the render flags as given on the command line.
type renderFlags struct {
	sourceType       string
	ignoreExtensions []string
	ignoreFolders    []string
	includeFolders   []string
	outputFile       string
	clipboard        bool
	tokens           bool
	model            string
	depth            int
	branch           string
}

// renderSettings are the effective options after configuration files and flags are merged.
type renderSettings struct {
	request    source.Request
	filter     filter.FilterOptions
	outputFile string
	clipboard  bool
	tokens     bool
	model      string
}

type application struct {
	dependencies Dependencies
	configPath   string
	verbose      bool
	logger       *zap.Logger
}

// Execute runs the rtt application.
func Execute(ctx context.Context) error {
	rootCommand := NewRootCommand(Dependencies{})
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// NewRootCommand builds the root Cobra command and its subcommands.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	app := &application{dependencies: dependencies.withDefaults(), logger: zap.NewNop()}
	var flags renderFlags
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return app.initializeLogger()
		},
		PersistentPostRun: func(command *cobra.Command, arguments []string) {
			_ = app.logger.Sync()
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, writeError := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return writeError
			}
			if len(arguments) == 0 {
				return command.Help()
			}
			return app.runRender(command, arguments[0], flags)
		},
	}
	rootCommand.SetOut(app.dependencies.Stdout)

	persistentFlags := rootCommand.PersistentFlags()
	persistentFlags.StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	registerToggleFlag(persistentFlags, &app.verbose, verboseFlagName, verboseFlagDescription)

	renderFlagSet := rootCommand.Flags()
	renderFlagSet.StringVarP(&flags.sourceType, sourceTypeFlagName, sourceTypeFlagShorthand, types.SourceTypeRemote, sourceTypeFlagDescription)
	registerPatternFlag(renderFlagSet, &flags.ignoreExtensions, ignoreExtensionsFlagName, ignoreExtensionsShort, ignoreExtensionsFlagDescription)
	registerPatternFlag(renderFlagSet, &flags.ignoreFolders, ignoreFoldersFlagName, ignoreFoldersShort, ignoreFoldersFlagDescription)
	registerPatternFlag(renderFlagSet, &flags.includeFolders, includeFoldersFlagName, includeFoldersShort, includeFoldersFlagDescription)
	renderFlagSet.StringVarP(&flags.outputFile, outputFileFlagName, outputFileShort, "", outputFileFlagDescription)
	registerToggleFlag(renderFlagSet, &flags.clipboard, clipboardFlagName, clipboardFlagDescription)
	registerToggleFlag(renderFlagSet, &flags.tokens, tokensFlagName, tokensFlagDescription)
	renderFlagSet.StringVar(&flags.model, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	renderFlagSet.IntVar(&flags.depth, depthFlagName, 0, depthFlagDescription)
	renderFlagSet.StringVar(&flags.branch, branchFlagName, "", branchFlagDescription)
	renderFlagSet.BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)

	rootCommand.AddCommand(app.createInitCommand(), app.createMCPCommand())
	return rootCommand
}

func (app *application) initializeLogger() error {
	logger, loggerError := app.dependencies.LoggerFactory(app.verbose)
	if loggerError != nil {
		return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
	}
	app.logger = logger
	return nil
}

func (app *application) newGenerator(tokenCounter tokenizer.Counter) *commands.Generator {
	return commands.NewGenerator(commands.Dependencies{
		FileSystem:   app.dependencies.FileSystem,
		Cloner:       app.dependencies.Cloner,
		Logger:       app.logger,
		TokenCounter: tokenCounter,
	})
}

func (app *application) runRender(command *cobra.Command, sourceArgument string, flags renderFlags) error {
	configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		FileSystem:       app.dependencies.FileSystem,
		WorkingDirectory: app.dependencies.WorkingDirectory,
		ExplicitFilePath: app.configPath,
	})
	if configurationError != nil {
		return configurationError
	}
	settings := resolveRenderSettings(command.Flags(), sourceArgument, flags, configuration.Render)

	var tokenCounter tokenizer.Counter
	if settings.tokens {
		counter, _, counterError := app.dependencies.CounterFactory(tokenizer.Config{Model: settings.model})
		if counterError != nil {
			app.logger.Warn(warningTokenizerMessage, zap.Error(counterError))
		} else {
			tokenCounter = counter
		}
	}

	result, generateError := app.newGenerator(tokenCounter).Generate(command.Context(), commands.GenerateOptions{
		Source: settings.request,
		Filter: settings.filter,
	})
	if generateError != nil {
		return generateError
	}

	if writeError := app.emitDocument(command.OutOrStdout(), settings.outputFile, result.Document); writeError != nil {
		return writeError
	}
	if settings.clipboard {
		if copyError := app.dependencies.Copier.Copy(result.Document); copyError != nil {
			app.logger.Warn(warningClipboardMessage, zap.Error(copyError))
		} else {
			app.logger.Info(infoClipboardMessage)
		}
	}
	app.logSummary(result)
	return nil
}

// resolveRenderSettings applies, in increasing precedence, built-in defaults,
// configuration file values, and flags given on the command line.
func resolveRenderSettings(flagSet *pflag.FlagSet, sourceArgument string, flags renderFlags, configuration config.RenderConfiguration) renderSettings {
	settings := renderSettings{
		request: source.Request{
			Source:     sourceArgument,
			SourceType: types.SourceTypeRemote,
			Branch:     configuration.Clone.Branch,
		},
		filter: filter.FilterOptions{
			IgnoreExtensions: resolvePatterns(flagSet, ignoreExtensionsFlagName, flags.ignoreExtensions, configuration.IgnoreExtensions),
			IgnoreFolders:    resolvePatterns(flagSet, ignoreFoldersFlagName, flags.ignoreFolders, configuration.IgnoreFolders),
			IncludeFolders:   resolvePatterns(flagSet, includeFoldersFlagName, flags.includeFolders, configuration.IncludeFolders),
		},
		outputFile: configuration.OutputFile,
		model:      tokenizer.DefaultModel,
	}
	// A folder flag selects its mode, so the configured list of the other mode is dropped.
	ignoreFoldersGiven := flagSet.Changed(ignoreFoldersFlagName)
	includeFoldersGiven := flagSet.Changed(includeFoldersFlagName)
	if includeFoldersGiven && !ignoreFoldersGiven {
		settings.filter.IgnoreFolders = nil
	}
	if ignoreFoldersGiven && !includeFoldersGiven {
		settings.filter.IncludeFolders = nil
	}
	if configuration.SourceType != "" {
		settings.request.SourceType = configuration.SourceType
	}
	if configuration.Clone.Depth != nil {
		settings.request.Depth = *configuration.Clone.Depth
	}
	if configuration.Clipboard != nil {
		settings.clipboard = *configuration.Clipboard
	}
	if configuration.Tokens.Enabled != nil {
		settings.tokens = *configuration.Tokens.Enabled
	}
	if configuration.Tokens.Model != "" {
		settings.model = configuration.Tokens.Model
	}

	if flagSet.Changed(sourceTypeFlagName) {
		settings.request.SourceType = flags.sourceType
	}
	if flagSet.Changed(depthFlagName) {
		settings.request.Depth = flags.depth
	}
	if flagSet.Changed(branchFlagName) {
		settings.request.Branch = flags.branch
	}
	if flagSet.Changed(outputFileFlagName) {
		settings.outputFile = flags.outputFile
	}
	if flagSet.Changed(clipboardFlagName) {
		settings.clipboard = flags.clipboard
	}
	if flagSet.Changed(tokensFlagName) {
		settings.tokens = flags.tokens
	}
	if flagSet.Changed(modelFlagName) {
		settings.model = flags.model
	}
	return settings
}

func (app *application) emitDocument(stdout io.Writer, outputFile string, document string) error {
	if outputFile == "" {
		_, writeError := io.WriteString(stdout, document)
		return writeError
	}
	if writeError := afero.WriteFile(app.dependencies.FileSystem, outputFile, []byte(document), defaultFilePermissions); writeError != nil {
		return fmt.Errorf(errorWriteOutputFormat, outputFile, writeError)
	}
	app.logger.Info(fmt.Sprintf(promptWrittenFormat, outputFile))
	return nil
}

func (app *application) logSummary(result commands.Result) {
	fields := []zap.Field{
		zap.Int(logFieldFiles, result.Summary.TotalFiles),
		zap.String(logFieldSize, utils.FormatFileSize(result.Summary.TotalBytes)),
	}
	if result.Summary.Model != "" {
		fields = append(fields, zap.Int(logFieldTokens, result.Summary.Tokens), zap.String(logFieldModel, result.Summary.Model))
	}
	app.logger.Info(infoSummaryMessage, fields...)
	if len(result.FailedFiles) > 0 {
		app.logger.Warn(warningFailedFilesMessage, zap.Strings(logFieldFailed, result.FailedFiles))
	}
}

func (app *application) createInitCommand() *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				FileSystem:       app.dependencies.FileSystem,
				Target:           target,
				Force:            force,
				WorkingDirectory: app.dependencies.WorkingDirectory,
			})
			if initError != nil {
				return initError
			}
			app.logger.Info(fmt.Sprintf(configurationWrittenFormat, writtenPath))
			return nil
		},
	}
	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

func (app *application) createMCPCommand() *cobra.Command {
	var listenAddress string
	mcpCommand := &cobra.Command{
		Use:   mcpUse,
		Short: mcpShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			server, serverError := mcp.NewServer(mcp.Config{
				Version: utils.GetApplicationVersion(),
				Logger:  app.logger,
			}, app.newGenerator(nil))
			if serverError != nil {
				return serverError
			}
			if listenAddress == "" {
				return server.Run(command.Context())
			}
			return server.RunHTTP(command.Context(), listenAddress, func(address string) {
				app.logger.Info(fmt.Sprintf(infoMCPListeningFormat, address))
			})
		},
	}
	mcpCommand.Flags().StringVar(&listenAddress, listenFlagName, "", listenFlagDescription)
	return mcpCommand
}
