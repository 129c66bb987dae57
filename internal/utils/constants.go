package utils

// Shared names and messages used across the rtt packages.
const (
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName          = ".git"
	// ConfigFileName is the name of the rtt configuration file.
	ConfigFileName            = ".rtt.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".rtt"
	// TemporaryDirectoryPrefix prefixes directories that hold cloned repositories.
	TemporaryDirectoryPrefix  = "repo_to_text_"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal application errors.
	ApplicationExecutionFailedMessage       = "rtt failed"
)
