// Package source acquires the directory a document is rendered from: either a
// fresh clone of a remote repository or an existing local directory.
package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/rtt/internal/types"
	"github.com/temirov/rtt/internal/utils"
)

const (
	defaultRemoteHost = "https://github.com/"

	errorUnsupportedSourceFormat = "unsupported source type %q"
	errorEmptySource             = "source must not be empty: %w"
	errorTemporaryDirectory      = "creating clone directory: %w: %w"
	errorCloneFormat             = "cloning %s: %w: %w"
	errorStatLocalFormat         = "stat local source %s: %w: %w"
	errorLocalNotDirectory       = "local source %s is not a directory: %w"

	infoCloningMessage    = "cloning repository"
	warningCleanupMessage = "unable to remove clone directory"
	debugReleaseMessage   = "removed clone directory"
	logFieldURL           = "url"
	logFieldPath          = "path"
	remoteSchemeSeparator = "://"
	scpLikeRemotePrefix   = "git@"
)

// Request describes the source to acquire.
type Request struct {
	Source     string
	SourceType string
	Depth      int
	Branch     string
}

// Workspace is an acquired source root. Release must be called once the
// document has been rendered; it is safe to call more than once.
type Workspace struct {
	RootPath string
	Label    string

	releaseOnce  sync.Once
	releaseError error
	release      func() error
}

// Release frees any temporary storage held by the workspace.
func (workspace *Workspace) Release() error {
	if workspace == nil || workspace.release == nil {
		return nil
	}
	workspace.releaseOnce.Do(func() {
		workspace.releaseError = workspace.release()
	})
	return workspace.releaseError
}

// Acquirer resolves requests into workspaces.
type Acquirer struct {
	fileSystem afero.Fs
	cloner     Cloner
	logger     *zap.Logger
}

// NewAcquirer constructs an Acquirer. Remote sources are cloned by cloner into
// temporary directories created on fileSystem.
func NewAcquirer(fileSystem afero.Fs, cloner Cloner, logger *zap.Logger) *Acquirer {
	return &Acquirer{fileSystem: fileSystem, cloner: cloner, logger: utils.LoggerOrNop(logger)}
}

// Acquire returns the workspace for request. Every failure wraps
// types.ErrSourceUnavailable and leaves nothing behind on disk.
func (acquirer *Acquirer) Acquire(ctx context.Context, request Request) (*Workspace, error) {
	trimmedSource := strings.TrimSpace(request.Source)
	if trimmedSource == "" {
		return nil, fmt.Errorf(errorEmptySource, types.ErrSourceUnavailable)
	}
	switch request.SourceType {
	case types.SourceTypeRemote, "":
		return acquirer.acquireRemote(ctx, trimmedSource, request)
	case types.SourceTypeLocal:
		return acquirer.acquireLocal(trimmedSource)
	default:
		return nil, fmt.Errorf(errorUnsupportedSourceFormat, request.SourceType)
	}
}

func (acquirer *Acquirer) acquireRemote(ctx context.Context, trimmedSource string, request Request) (*Workspace, error) {
	temporaryDirectory, temporaryDirectoryError := afero.TempDir(acquirer.fileSystem, "", utils.TemporaryDirectoryPrefix)
	if temporaryDirectoryError != nil {
		return nil, fmt.Errorf(errorTemporaryDirectory, types.ErrSourceUnavailable, temporaryDirectoryError)
	}
	workspace := &Workspace{
		RootPath: temporaryDirectory,
		Label:    trimmedSource,
		release: func() error {
			return acquirer.removeDirectory(temporaryDirectory)
		},
	}

	remoteURL := ResolveRemoteURL(trimmedSource)
	acquirer.logger.Info(infoCloningMessage, zap.String(logFieldURL, remoteURL))
	cloneError := acquirer.cloner.Clone(ctx, temporaryDirectory, CloneOptions{
		URL:    remoteURL,
		Depth:  request.Depth,
		Branch: request.Branch,
	})
	if cloneError != nil {
		_ = workspace.Release()
		return nil, fmt.Errorf(errorCloneFormat, remoteURL, types.ErrSourceUnavailable, cloneError)
	}
	return workspace, nil
}

func (acquirer *Acquirer) acquireLocal(trimmedSource string) (*Workspace, error) {
	rootPath := filepath.Clean(trimmedSource)
	rootInfo, statError := acquirer.fileSystem.Stat(rootPath)
	if statError != nil {
		return nil, fmt.Errorf(errorStatLocalFormat, trimmedSource, types.ErrSourceUnavailable, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorLocalNotDirectory, trimmedSource, types.ErrSourceUnavailable)
	}
	return &Workspace{RootPath: rootPath, Label: trimmedSource}, nil
}

func (acquirer *Acquirer) removeDirectory(directoryPath string) error {
	if removeError := acquirer.fileSystem.RemoveAll(directoryPath); removeError != nil {
		acquirer.logger.Warn(warningCleanupMessage, zap.String(logFieldPath, directoryPath), zap.Error(removeError))
		return removeError
	}
	acquirer.logger.Debug(debugReleaseMessage, zap.String(logFieldPath, directoryPath))
	return nil
}

// ResolveRemoteURL expands an "owner/name" shorthand into a GitHub HTTPS URL.
// Values that already carry a scheme or use the scp-like git@ form are returned unchanged.
func ResolveRemoteURL(remoteSource string) string {
	if strings.Contains(remoteSource, remoteSchemeSeparator) || strings.HasPrefix(remoteSource, scpLikeRemotePrefix) {
		return remoteSource
	}
	return defaultRemoteHost + strings.Trim(remoteSource, types.PathSeparator)
}
