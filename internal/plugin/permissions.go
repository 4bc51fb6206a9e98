package plugin

// Permissions declares which theme APIs a plugin may use beyond hooks.
type Permissions struct {
	Settings bool `toml:"settings"` // exmachina.get_option
	Log      bool `toml:"log"`      // exmachina.log
}

// PermissionSummary formats permissions for display.
func PermissionSummary(perms Permissions) []string {
	var lines []string

	if perms.Settings {
		lines = append(lines, "Settings: read theme settings")
	}
	if perms.Log {
		lines = append(lines, "Log: write to the exmachina log")
	}

	if len(lines) == 0 {
		lines = append(lines, "Hooks only")
	}

	return lines
}
