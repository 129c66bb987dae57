package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/temirov/rtt/internal/utils"
)

// InitTarget selects which .rtt.yaml rtt init writes.
type InitTarget string

const (
	// InitTargetLocal is the .rtt.yaml of the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal is ~/.rtt/.rtt.yaml.
	InitTargetGlobal InitTarget = "global"

	renderTemplate = `render:
  source_type: remote
  ignore_extensions: []
  ignore_folders: []
  include_folders: []
  output_file: ""
  clipboard: false
  tokens:
    enabled: false
    model: gpt-4o
  clone:
    depth: 0
    branch: ""
`
	templateFileMode      os.FileMode = 0o600
	globalDirectoryMode   os.FileMode = 0o755
	errorTargetFormat                 = "unsupported init target %q"
	errorWorkingDirFormat             = "working directory for %s: %w"
	errorHomeDirFormat                = "home directory for %s: %w"
	errorGlobalDirFormat              = "prepare %s: %w"
	errorTemplateExists               = "%s already exists, pass --force to replace it"
	errorTemplateCheck                = "check %s: %w"
	errorTemplateWrite                = "write %s: %w"
)

// InitOptions selects the template destination. FileSystem, WorkingDirectory,
// and HomeDirectory fall back to the operating system when empty.
type InitOptions struct {
	FileSystem       afero.Fs
	Target           InitTarget
	Force            bool
	WorkingDirectory string
	HomeDirectory    string
}

// InitializeConfiguration writes the render template and returns its path.
// An existing file is only replaced when Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	fileSystem := fileSystemOrDefault(options.FileSystem)
	templatePath, pathError := templateDestination(fileSystem, options)
	if pathError != nil {
		return "", pathError
	}

	exists, existsError := afero.Exists(fileSystem, templatePath)
	switch {
	case existsError != nil:
		return "", fmt.Errorf(errorTemplateCheck, templatePath, existsError)
	case exists && !options.Force:
		return "", fmt.Errorf(errorTemplateExists, templatePath)
	}

	if writeError := afero.WriteFile(fileSystem, templatePath, []byte(renderTemplate), templateFileMode); writeError != nil {
		return "", fmt.Errorf(errorTemplateWrite, templatePath, writeError)
	}
	return templatePath, nil
}

func templateDestination(fileSystem afero.Fs, options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			currentDirectory, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf(errorWorkingDirFormat, utils.ConfigFileName, err)
			}
			workingDirectory = currentDirectory
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, err := resolveHomeDirectory(options.HomeDirectory)
		if err != nil {
			return "", fmt.Errorf(errorHomeDirFormat, utils.ConfigFileName, err)
		}
		globalDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := fileSystem.MkdirAll(globalDirectory, globalDirectoryMode); err != nil {
			return "", fmt.Errorf(errorGlobalDirFormat, globalDirectory, err)
		}
		return filepath.Join(globalDirectory, utils.ConfigFileName), nil
	default:
		return "", fmt.Errorf(errorTargetFormat, options.Target)
	}
}
