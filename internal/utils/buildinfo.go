// Package utils provides helper functions shared by the rtt packages, including version retrieval.
package utils

import (
	"runtime/debug"
)

const (
	unknownVersion     = "unknown"
	developmentVersion = "(devel)"
	vcsRevisionKey     = "vcs.revision"
	shortRevisionSize  = 12
)

// GetApplicationVersion reports the module version recorded at build time.
// Development builds fall back to the VCS revision when available.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return unknownVersion
	}
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}
	for _, buildSetting := range buildInfo.Settings {
		if buildSetting.Key == vcsRevisionKey && buildSetting.Value != "" {
			revision := buildSetting.Value
			if len(revision) > shortRevisionSize {
				revision = revision[:shortRevisionSize]
			}
			return developmentVersion + " " + revision
		}
	}
	return unknownVersion
}
