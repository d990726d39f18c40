package env

import "os"

func IsGithubAction() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// ConfigDir returns the RPM_CHANGES_MERGER_CONFIG_DIR environment variable value, used
// to relocate the user configuration directory (tests and CI images set it).
func ConfigDir() string {
	return os.Getenv("RPM_CHANGES_MERGER_CONFIG_DIR")
}
