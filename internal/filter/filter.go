// Package filter decides which directories and files of a source tree are selected.
package filter

import (
	"fmt"
	"path"
	"strings"

	"github.com/temirov/rtt/internal/types"
	"github.com/temirov/rtt/internal/utils"
)

// Decision describes how a directory participates in a walk.
type Decision int

const (
	// DecisionEligible means the directory's files are selected and the walk descends.
	DecisionEligible Decision = iota
	// DecisionTraverseOnly means the directory's files are skipped but the walk still descends.
	DecisionTraverseOnly
	// DecisionExcluded means neither the directory nor anything beneath it is visited.
	DecisionExcluded
)

const errorConfigConflictFormat = "ignore folders %v and include folders %v: %w"

var (
	// DefaultIgnoreExtensions are always merged into the caller's ignored extensions.
	DefaultIgnoreExtensions = []string{
		".pyc",
		".pyo",
		".pyd",
		".so",
		".egg-info",
		".dist-info",
		"__pycache__",
		".DS_Store",
		".git",
		".gitignore",
		".idea",
		".vscode",
		".env",
	}
	// DefaultIgnoreFolders are always merged into the caller's ignored folders.
	DefaultIgnoreFolders = []string{utils.GitDirectoryName}
)

// FilterOptions carries the caller supplied selection rules.
type FilterOptions struct {
	IgnoreExtensions []string
	IgnoreFolders    []string
	IncludeFolders   []string
}

// FilterConfig is the immutable selection configuration of a single run.
// Build it with NewFilterConfig.
type FilterConfig struct {
	ignoreExtensions []string
	ignoreFolders    []string
	includeFolders   []string
}

// NewFilterConfig validates options and merges them with the defaults.
// Caller supplied ignore folders and include folders are mutually exclusive;
// the built-in .git exclusion does not count towards the conflict.
func NewFilterConfig(options FilterOptions) (FilterConfig, error) {
	callerIgnoreFolders := utils.DeduplicatePatterns(options.IgnoreFolders)
	callerIncludeFolders := utils.DeduplicatePatterns(options.IncludeFolders)
	if len(callerIgnoreFolders) > 0 && len(callerIncludeFolders) > 0 {
		return FilterConfig{}, fmt.Errorf(errorConfigConflictFormat, callerIgnoreFolders, callerIncludeFolders, types.ErrConfigConflict)
	}
	return FilterConfig{
		ignoreExtensions: utils.DeduplicatePatterns(append(append([]string{}, DefaultIgnoreExtensions...), options.IgnoreExtensions...)),
		ignoreFolders:    utils.DeduplicatePatterns(append(append([]string{}, DefaultIgnoreFolders...), callerIgnoreFolders...)),
		includeFolders:   callerIncludeFolders,
	}, nil
}

// IgnoreExtensions returns a copy of the effective ignored extensions.
func (config FilterConfig) IgnoreExtensions() []string {
	return append([]string(nil), config.ignoreExtensions...)
}

// IgnoreFolders returns a copy of the effective ignored folder patterns.
func (config FilterConfig) IgnoreFolders() []string {
	return append([]string(nil), config.ignoreFolders...)
}

// IncludeFolders returns a copy of the included folder patterns.
func (config FilterConfig) IncludeFolders() []string {
	return append([]string(nil), config.includeFolders...)
}

// MatchesSegment reports whether segment matches any pattern as a whole.
// Patterns use shell glob syntax; a malformed pattern only matches itself literally.
func MatchesSegment(segment string, patterns []string) bool {
	for _, pattern := range patterns {
		isMatched, matchError := path.Match(pattern, segment)
		if matchError != nil {
			isMatched = pattern == segment
		}
		if isMatched {
			return true
		}
	}
	return false
}

// IsExcludedSegment reports whether a single directory or file name matches an ignored folder pattern.
func (config FilterConfig) IsExcludedSegment(segment string) bool {
	return MatchesSegment(segment, config.ignoreFolders)
}

// DirectoryDecision applies the directory precedence rules to a forward-slash
// path relative to the source root. Exclusion wins over inclusion.
func (config FilterConfig) DirectoryDecision(relativeDirectory string) Decision {
	segments := utils.PathSegments(relativeDirectory)
	for _, segment := range segments {
		if config.IsExcludedSegment(segment) {
			return DecisionExcluded
		}
	}
	if len(config.includeFolders) == 0 {
		return DecisionEligible
	}
	for _, segment := range segments {
		if MatchesSegment(segment, config.includeFolders) {
			return DecisionEligible
		}
	}
	return DecisionTraverseOnly
}

// ShouldIgnoreFile reports whether a file base name ends with an ignored extension.
func (config FilterConfig) ShouldIgnoreFile(baseName string) bool {
	for _, extension := range config.ignoreExtensions {
		if strings.HasSuffix(baseName, extension) {
			return true
		}
	}
	return false
}

// String renders the decision for log fields.
func (decision Decision) String() string {
	switch decision {
	case DecisionEligible:
		return "eligible"
	case DecisionTraverseOnly:
		return "traverse-only"
	case DecisionExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}
