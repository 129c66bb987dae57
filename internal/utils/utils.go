package utils

import (
	"strings"

	"github.com/temirov/rtt/internal/types"
)

const (
	listSeparator    = ","
	currentDirectory = "."
	windowsSeparator = "\\"
)

// DeduplicatePatterns removes duplicate and blank patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept and surrounding whitespace is trimmed.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if _, exists := encounteredPatterns[trimmedPattern]; exists {
			continue
		}
		encounteredPatterns[trimmedPattern] = struct{}{}
		result = append(result, trimmedPattern)
	}
	return result
}

// SplitPatternList expands comma separated entries so that "-i .log,.tmp" and
// "-i .log -i .tmp" produce the same list.
func SplitPatternList(values []string) []string {
	var expanded []string
	for _, value := range values {
		expanded = append(expanded, strings.Split(value, listSeparator)...)
	}
	return DeduplicatePatterns(expanded)
}

// PathSegments splits a forward-slash relative path into its segments.
// The root path "." and the empty path have no segments.
func PathSegments(relativePath string) []string {
	normalizedPath := strings.Trim(strings.ReplaceAll(relativePath, windowsSeparator, types.PathSeparator), types.PathSeparator)
	if normalizedPath == "" || normalizedPath == currentDirectory {
		return nil
	}
	var segments []string
	for _, segment := range strings.Split(normalizedPath, types.PathSeparator) {
		if segment == "" || segment == currentDirectory {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// BaseName returns the last segment of a forward-slash relative path.
func BaseName(relativePath string) string {
	segments := PathSegments(relativePath)
	if len(segments) == 0 {
		return relativePath
	}
	return segments[len(segments)-1]
}
