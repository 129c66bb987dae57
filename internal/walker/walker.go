// Package walker discovers the files of a source root that pass the selection rules.
package walker

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/rtt/internal/filter"
	"github.com/temirov/rtt/internal/types"
	"github.com/temirov/rtt/internal/utils"
)

const (
	errorStatRootFormat      = "stat source root %s: %w: %w"
	errorRootNotDirectory    = "source root %s is not a directory: %w"
	errorReadRootFormat      = "reading source root %s: %w: %w"
	warningSkipSubdirMessage = "skipping unreadable directory"
	debugExcludedMessage     = "skipping excluded directory"
	debugExcludedFileMessage = "skipping file named like an ignored folder"
	debugSymlinkMessage      = "skipping symbolic link to directory"
	debugVisitMessage        = "visiting directory"

	logFieldPath     = "path"
	logFieldDecision = "decision"
)

// Walker lists the selected files beneath a source root. It only reads the filesystem.
type Walker struct {
	fileSystem afero.Fs
	logger     *zap.Logger
}

// NewWalker constructs a Walker. A nil logger disables diagnostics.
func NewWalker(fileSystem afero.Fs, logger *zap.Logger) Walker {
	return Walker{fileSystem: fileSystem, logger: utils.LoggerOrNop(logger)}
}

// Walk returns forward-slash paths relative to rootPath in discovery order.
// Traversal is depth-first: a directory's own files come first, then its
// subdirectories are descended. Entries of one directory are enumerated in
// lexical order. Excluded directories are never opened.
func (walker Walker) Walk(rootPath string, filterConfig filter.FilterConfig) ([]string, error) {
	rootInfo, statError := walker.fileSystem.Stat(rootPath)
	if statError != nil {
		return nil, fmt.Errorf(errorStatRootFormat, rootPath, types.ErrSourceUnavailable, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorRootNotDirectory, rootPath, types.ErrSourceUnavailable)
	}
	rootEntries, readError := afero.ReadDir(walker.fileSystem, rootPath)
	if readError != nil {
		return nil, fmt.Errorf(errorReadRootFormat, rootPath, types.ErrSourceUnavailable, readError)
	}

	includedFiles := []string{}
	walker.walkDirectory(rootPath, ".", rootEntries, filterConfig, &includedFiles)
	return includedFiles, nil
}

func (walker Walker) walkDirectory(directoryPath string, relativeDirectory string, entries []os.FileInfo, filterConfig filter.FilterConfig, includedFiles *[]string) {
	decision := filterConfig.DirectoryDecision(relativeDirectory)
	walker.logger.Debug(debugVisitMessage, zap.String(logFieldPath, relativeDirectory), zap.Stringer(logFieldDecision, decision))

	var subdirectories []string
	for _, entry := range entries {
		entryName := entry.Name()
		if walker.isDirectoryEntry(filepath.Join(directoryPath, entryName), entry, path.Join(relativeDirectory, entryName)) {
			if entry.IsDir() {
				subdirectories = append(subdirectories, entryName)
			}
			continue
		}
		if decision != filter.DecisionEligible || filterConfig.ShouldIgnoreFile(entryName) {
			continue
		}
		if filterConfig.IsExcludedSegment(entryName) {
			walker.logger.Debug(debugExcludedFileMessage, zap.String(logFieldPath, path.Join(relativeDirectory, entryName)))
			continue
		}
		*includedFiles = append(*includedFiles, path.Join(relativeDirectory, entryName))
	}

	for _, subdirectoryName := range subdirectories {
		relativeSubdirectory := path.Join(relativeDirectory, subdirectoryName)
		if filterConfig.DirectoryDecision(relativeSubdirectory) == filter.DecisionExcluded {
			walker.logger.Debug(debugExcludedMessage, zap.String(logFieldPath, relativeSubdirectory))
			continue
		}
		subdirectoryPath := filepath.Join(directoryPath, subdirectoryName)
		subdirectoryEntries, readError := afero.ReadDir(walker.fileSystem, subdirectoryPath)
		if readError != nil {
			walker.logger.Warn(warningSkipSubdirMessage, zap.String(logFieldPath, relativeSubdirectory), zap.Error(readError))
			continue
		}
		walker.walkDirectory(subdirectoryPath, relativeSubdirectory, subdirectoryEntries, filterConfig, includedFiles)
	}
}

// isDirectoryEntry reports whether entry is a directory or a symbolic link
// resolving to one. Links are never followed, so only real directories are descended.
func (walker Walker) isDirectoryEntry(entryPath string, entry os.FileInfo, relativePath string) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Mode()&os.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := walker.fileSystem.Stat(entryPath)
	if statError != nil || !targetInfo.IsDir() {
		return false
	}
	walker.logger.Debug(debugSymlinkMessage, zap.String(logFieldPath, relativePath))
	return true
}
