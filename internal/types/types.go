// Package types defines every cross‑package data structure used by the rtt CLI.
package types

import "errors"

const (
	SourceTypeRemote = "remote"
	SourceTypeLocal  = "local"

	CommandInit = "init"
	CommandMCP  = "mcp"

	// PathSeparator separates segments of a RelativeFilePath.
	PathSeparator = "/"
)

var (
	// ErrConfigConflict reports that folder inclusion and exclusion were both requested.
	ErrConfigConflict = errors.New("ignore folders and include folders cannot be set at the same time")
	// ErrSourceUnavailable reports that the source root could not be acquired or read.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// TreeNode is one entry of the rendered directory tree. A node without a
// child index is a file leaf.
type TreeNode struct {
	Name       string
	Children   []*TreeNode
	childIndex map[string]int
}

// NewDirectoryNode returns an empty directory node.
func NewDirectoryNode(name string) *TreeNode {
	return &TreeNode{Name: name, childIndex: map[string]int{}}
}

// NewFileNode returns a file leaf.
func NewFileNode(name string) *TreeNode {
	return &TreeNode{Name: name}
}

// IsDirectory reports whether the node can hold children.
func (node *TreeNode) IsDirectory() bool {
	return node != nil && node.childIndex != nil
}

// Child returns the child with the given name.
func (node *TreeNode) Child(name string) (*TreeNode, bool) {
	if !node.IsDirectory() {
		return nil, false
	}
	position, exists := node.childIndex[name]
	if !exists {
		return nil, false
	}
	return node.Children[position], true
}

// AddChild appends child unless a sibling with the same name already exists,
// in which case the existing sibling is returned. First insertion wins.
func (node *TreeNode) AddChild(child *TreeNode) *TreeNode {
	if existing, exists := node.Child(child.Name); exists {
		return existing
	}
	node.childIndex[child.Name] = len(node.Children)
	node.Children = append(node.Children, child)
	return child
}

// Summary captures aggregate information about a rendered document.
type Summary struct {
	TotalFiles int    `json:"totalFiles"`
	TotalBytes int64  `json:"totalBytes"`
	Tokens     int    `json:"tokens,omitempty"`
	Model      string `json:"model,omitempty"`
}
