// Package output renders the selected files of a source into a single text document.
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/rtt/internal/tree"
	"github.com/temirov/rtt/internal/types"
	"github.com/temirov/rtt/internal/utils"
)

const (
	documentHeaderFormat   = "# Structure of repository %s\n\n"
	treeSectionHeader      = "## Tree Structure\n"
	filesSectionHeader     = "\n## Files\n\n"
	fileNameLabel          = "### File Name: "
	filePathLabel          = "### File Path: "
	fileContentsHeader     = "\n### File contents\n"
	blockTerminator        = "\n\n"
	fileReadErrorFormat    = "Error reading %s: %v"
	warningReadFileMessage = "unable to render file"

	logFieldPath = "path"
)

// DocumentInput is everything needed to render one document.
type DocumentInput struct {
	Label    string
	RootPath string
	Files    []string
	Tree     *types.TreeNode
}

// Rendering is the rendered document plus facts gathered while producing it.
type Rendering struct {
	Document     string
	ContentBytes int64
	FailedFiles  []string
}

// DocumentRenderer reads file contents at render time and lays out the document.
type DocumentRenderer struct {
	fileSystem afero.Fs
	logger     *zap.Logger
}

// NewDocumentRenderer constructs a DocumentRenderer. A nil logger disables diagnostics.
func NewDocumentRenderer(fileSystem afero.Fs, logger *zap.Logger) DocumentRenderer {
	return DocumentRenderer{fileSystem: fileSystem, logger: utils.LoggerOrNop(logger)}
}

// Render produces the document: a header naming the source, the tree section,
// and one content block per file in input order. A file that cannot be read or
// decoded as text is replaced by an inline error notice; rendering always
// continues with the next file.
func (renderer DocumentRenderer) Render(input DocumentInput) Rendering {
	var builder strings.Builder
	var rendering Rendering

	fmt.Fprintf(&builder, documentHeaderFormat, input.Label)
	builder.WriteString(treeSectionHeader)
	builder.WriteString(tree.Render(input.Tree))
	builder.WriteString(filesSectionHeader)

	for _, relativePath := range input.Files {
		fileContent, readError := renderer.readText(input.RootPath, relativePath)
		if readError != nil {
			renderer.logger.Warn(warningReadFileMessage, zap.String(logFieldPath, relativePath), zap.Error(readError))
			rendering.FailedFiles = append(rendering.FailedFiles, relativePath)
			fmt.Fprintf(&builder, fileReadErrorFormat, relativePath, readError)
			builder.WriteString(blockTerminator)
			continue
		}
		rendering.ContentBytes += int64(len(fileContent))
		builder.WriteString(fileNameLabel + utils.BaseName(relativePath) + "\n")
		builder.WriteString(filePathLabel + relativePath + "\n")
		builder.WriteString(fileContentsHeader)
		builder.WriteString(fileContent)
		builder.WriteString(blockTerminator)
	}

	rendering.Document = builder.String()
	return rendering
}

func (renderer DocumentRenderer) readText(rootPath string, relativePath string) (string, error) {
	fileBytes, readError := afero.ReadFile(renderer.fileSystem, filepath.Join(rootPath, filepath.FromSlash(relativePath)))
	if readError != nil {
		return "", readError
	}
	return utils.DecodeText(fileBytes)
}
