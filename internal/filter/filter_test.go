package filter_test

import (
	"errors"
	"testing"

	"github.com/temirov/rtt/internal/filter"
	"github.com/temirov/rtt/internal/types"
)

func mustFilterConfig(testingInstance *testing.T, options filter.FilterOptions) filter.FilterConfig {
	testingInstance.Helper()
	filterConfig, configError := filter.NewFilterConfig(options)
	if configError != nil {
		testingInstance.Fatalf("NewFilterConfig error: %v", configError)
	}
	return filterConfig
}

// TestNewFilterConfigRejectsConflict verifies include and exclude folders are mutually exclusive.
func TestNewFilterConfigRejectsConflict(testingInstance *testing.T) {
	_, configError := filter.NewFilterConfig(filter.FilterOptions{
		IgnoreFolders:  []string{"vendor"},
		IncludeFolders: []string{"src"},
	})
	if !errors.Is(configError, types.ErrConfigConflict) {
		testingInstance.Fatalf("expected ErrConfigConflict, got %v", configError)
	}
}

// TestNewFilterConfigMergesDefaults verifies the built-in rules are always present.
func TestNewFilterConfigMergesDefaults(testingInstance *testing.T) {
	filterConfig := mustFilterConfig(testingInstance, filter.FilterOptions{
		IgnoreExtensions: []string{".log", ".pyc"},
		IncludeFolders:   []string{"src", " "},
	})
	extensions := filterConfig.IgnoreExtensions()
	if len(extensions) != len(filter.DefaultIgnoreExtensions)+1 {
		testingInstance.Fatalf("expected defaults plus .log, got %v", extensions)
	}
	if extensions[len(extensions)-1] != ".log" {
		testingInstance.Errorf("expected caller extension last, got %v", extensions)
	}
	folders := filterConfig.IgnoreFolders()
	if len(folders) != 1 || folders[0] != ".git" {
		testingInstance.Errorf("expected only .git ignored, got %v", folders)
	}
	included := filterConfig.IncludeFolders()
	if len(included) != 1 || included[0] != "src" {
		testingInstance.Errorf("expected blank include pattern dropped, got %v", included)
	}
}

// TestMatchesSegment verifies whole-segment glob matching.
func TestMatchesSegment(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		segment  string
		patterns []string
		expected bool
	}{
		{testName: "literal", segment: "docs", patterns: []string{"docs"}, expected: true},
		{testName: "no substring", segment: "mydocs", patterns: []string{"docs"}, expected: false},
		{testName: "no prefix", segment: "docs_old", patterns: []string{"docs"}, expected: false},
		{testName: "star", segment: "build-linux", patterns: []string{"build-*"}, expected: true},
		{testName: "question", segment: "v1", patterns: []string{"v?"}, expected: true},
		{testName: "class", segment: "b", patterns: []string{"[abc]"}, expected: true},
		{testName: "class miss", segment: "d", patterns: []string{"[abc]"}, expected: false},
		{testName: "malformed literal", segment: "[broken", patterns: []string{"[broken"}, expected: true},
		{testName: "malformed miss", segment: "broken", patterns: []string{"[broken"}, expected: false},
		{testName: "empty set", segment: "docs", patterns: nil, expected: false},
	}
	for index, testCase := range testCases {
		actual := filter.MatchesSegment(testCase.segment, testCase.patterns)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestDirectoryDecision verifies the directory precedence table.
func TestDirectoryDecision(testingInstance *testing.T) {
	ignoring := mustFilterConfig(testingInstance, filter.FilterOptions{IgnoreFolders: []string{"node_*"}})
	including := mustFilterConfig(testingInstance, filter.FilterOptions{IncludeFolders: []string{"src"}})
	unfiltered := mustFilterConfig(testingInstance, filter.FilterOptions{})

	testCases := []struct {
		testName     string
		filterConfig filter.FilterConfig
		directory    string
		expected     filter.Decision
	}{
		{testName: "root unfiltered", filterConfig: unfiltered, directory: ".", expected: filter.DecisionEligible},
		{testName: "default git", filterConfig: unfiltered, directory: ".git", expected: filter.DecisionExcluded},
		{testName: "nested git", filterConfig: unfiltered, directory: "sub/.git/objects", expected: filter.DecisionExcluded},
		{testName: "ignored glob", filterConfig: ignoring, directory: "web/node_modules", expected: filter.DecisionExcluded},
		{testName: "ignored sibling kept", filterConfig: ignoring, directory: "web/nodes", expected: filter.DecisionEligible},
		{testName: "include root", filterConfig: including, directory: ".", expected: filter.DecisionTraverseOnly},
		{testName: "include miss", filterConfig: including, directory: "docs", expected: filter.DecisionTraverseOnly},
		{testName: "include hit", filterConfig: including, directory: "src", expected: filter.DecisionEligible},
		{testName: "include nested hit", filterConfig: including, directory: "app/src/pkg", expected: filter.DecisionEligible},
		{testName: "include substring miss", filterConfig: including, directory: "srcs", expected: filter.DecisionTraverseOnly},
		{testName: "exclusion beats inclusion", filterConfig: including, directory: "src/.git", expected: filter.DecisionExcluded},
	}
	for index, testCase := range testCases {
		actual := testCase.filterConfig.DirectoryDecision(testCase.directory)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %s, got %s", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestShouldIgnoreFile verifies literal suffix matching of ignored extensions.
func TestShouldIgnoreFile(testingInstance *testing.T) {
	filterConfig := mustFilterConfig(testingInstance, filter.FilterOptions{IgnoreExtensions: []string{".lock"}})
	testCases := []struct {
		baseName string
		expected bool
	}{
		{baseName: "module.pyc", expected: true},
		{baseName: ".env", expected: true},
		{baseName: "production.env", expected: true},
		{baseName: ".gitignore", expected: true},
		{baseName: "yarn.lock", expected: true},
		{baseName: "main.go", expected: false},
		{baseName: "pyc", expected: false},
		{baseName: "notes.lockfile", expected: false},
	}
	for index, testCase := range testCases {
		actual := filterConfig.ShouldIgnoreFile(testCase.baseName)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.baseName, testCase.expected, actual)
		}
	}
}
