package config

import "path/filepath"

// Defaults returns the built-in configuration. StorePath stays empty so
// the store package's platform default applies.
func Defaults() Config {
	journal := ""
	if dirs, err := GetXDGDirs(); err == nil {
		journal = filepath.Join(dirs.StateHome, "journal.sqlite")
	}
	return Config{
		JournalPath: journal,
		Tools: ToolsConfig{
			IOReg:      "ioreg",
			LinkHelper: "dispmode-linkhelper",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
