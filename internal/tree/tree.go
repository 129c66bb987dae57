// Package tree turns an ordered list of relative file paths into a directory
// tree and serializes it for display.
package tree

import (
	"io"
	"strings"

	"github.com/temirov/rtt/internal/types"
	"github.com/temirov/rtt/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeBranchPadding   = "│   "
	lineTerminator      = "\n"
)

// Build creates the tree for relativePaths. Siblings keep the order in which
// they were first seen. Every segment but the last becomes a directory.
func Build(relativePaths []string) *types.TreeNode {
	rootNode := types.NewDirectoryNode("")
	for _, relativePath := range relativePaths {
		segments := utils.PathSegments(relativePath)
		if len(segments) == 0 {
			continue
		}
		currentNode := rootNode
		for _, directoryName := range segments[:len(segments)-1] {
			currentNode = currentNode.AddChild(types.NewDirectoryNode(directoryName))
		}
		currentNode.AddChild(types.NewFileNode(segments[len(segments)-1]))
	}
	return rootNode
}

// Render returns the serialized children of rootNode.
func Render(rootNode *types.TreeNode) string {
	var builder strings.Builder
	_ = Write(&builder, rootNode)
	return builder.String()
}

// Write serializes the children of rootNode, one "├── name" line per node,
// indenting each nesting level by "│   ".
func Write(writer io.Writer, rootNode *types.TreeNode) error {
	if rootNode == nil {
		return nil
	}
	return writeChildren(writer, rootNode, "")
}

func writeChildren(writer io.Writer, parentNode *types.TreeNode, indent string) error {
	for _, childNode := range parentNode.Children {
		if _, writeError := io.WriteString(writer, indent+treeBranchConnector+childNode.Name+lineTerminator); writeError != nil {
			return writeError
		}
		if childNode.IsDirectory() {
			if writeError := writeChildren(writer, childNode, indent+treeBranchPadding); writeError != nil {
				return writeError
			}
		}
	}
	return nil
}
