// Package config loads rtt defaults from global and local YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/temirov/rtt/internal/utils"
)

const (
	errorWorkingDirectoryFormat = "determine working directory: %w"
	errorResolvePathFormat      = "resolve configuration path %s: %w"
	errorStatFormat             = "stat configuration %s: %w"
	errorDirectoryPathFormat    = "configuration path %s is a directory"
	errorReadFormat             = "read configuration from %s: %w"
	errorDecodeFormat           = "decode configuration from %s: %w"
)

// LoadOptions controls how application configuration is discovered.
// A nil FileSystem reads from the operating system and an empty HomeDirectory
// resolves to the current user's home.
type LoadOptions struct {
	FileSystem       afero.Fs
	WorkingDirectory string
	HomeDirectory    string
	ExplicitFilePath string
}

// ApplicationConfiguration is the root of an .rtt.yaml file.
type ApplicationConfiguration struct {
	Render RenderConfiguration `mapstructure:"render"`
}

// RenderConfiguration holds defaults for rendering a repository. Unset values
// are nil or empty so that a later file only overrides what it names.
type RenderConfiguration struct {
	SourceType       string             `mapstructure:"source_type"`
	IgnoreExtensions []string           `mapstructure:"ignore_extensions"`
	IgnoreFolders    []string           `mapstructure:"ignore_folders"`
	IncludeFolders   []string           `mapstructure:"include_folders"`
	OutputFile       string             `mapstructure:"output_file"`
	Clipboard        *bool              `mapstructure:"clipboard"`
	Tokens           TokenConfiguration `mapstructure:"tokens"`
	Clone            CloneConfiguration `mapstructure:"clone"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// CloneConfiguration controls how remote repositories are cloned.
type CloneConfiguration struct {
	Depth  *int   `mapstructure:"depth"`
	Branch string `mapstructure:"branch"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
// The local file, or the explicit file when one is given, overrides the global one.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}

	fileSystem := fileSystemOrDefault(options.FileSystem)
	var merged ApplicationConfiguration

	if homeDirectory, err := resolveHomeDirectory(options.HomeDirectory); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(fileSystem, globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(fileSystem, localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Render.IgnoreExtensions = utils.DeduplicatePatterns(merged.Render.IgnoreExtensions)
	merged.Render.IgnoreFolders = utils.DeduplicatePatterns(merged.Render.IgnoreFolders)
	merged.Render.IncludeFolders = utils.DeduplicatePatterns(merged.Render.IncludeFolders)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf(errorResolvePathFormat, explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func fileSystemOrDefault(fileSystem afero.Fs) afero.Fs {
	if fileSystem == nil {
		return afero.NewOsFs()
	}
	return fileSystem
}

func resolveHomeDirectory(homeDirectory string) (string, error) {
	if homeDirectory != "" {
		return homeDirectory, nil
	}
	return os.UserHomeDir()
}

func loadConfigurationFromPath(fileSystem afero.Fs, path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := fileSystem.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(errorStatFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(errorDirectoryPathFormat, path)
	}

	reader := viper.New()
	reader.SetFs(fileSystem)
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorReadFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Render = result.Render.merge(override.Render)
	return result
}

func (config RenderConfiguration) merge(override RenderConfiguration) RenderConfiguration {
	result := config
	if override.SourceType != "" {
		result.SourceType = override.SourceType
	}
	if len(override.IgnoreExtensions) > 0 {
		result.IgnoreExtensions = append([]string{}, override.IgnoreExtensions...)
	}
	if len(override.IgnoreFolders) > 0 {
		result.IgnoreFolders = append([]string{}, override.IgnoreFolders...)
	}
	if len(override.IncludeFolders) > 0 {
		result.IncludeFolders = append([]string{}, override.IncludeFolders...)
	}
	if override.OutputFile != "" {
		result.OutputFile = override.OutputFile
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Clone = result.Clone.merge(override.Clone)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config CloneConfiguration) merge(override CloneConfiguration) CloneConfiguration {
	result := config
	if override.Depth != nil {
		result.Depth = cloneInt(override.Depth)
	}
	if override.Branch != "" {
		result.Branch = override.Branch
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
