package auth

const (
	PermTerminalUse      = "terminal.use"
	PermAttendanceRead   = "attendance.read"
	PermAttendanceEdit   = "attendance.edit"
	PermAttendanceDelete = "attendance.delete"
	PermAttendanceExport = "attendance.export"
	PermSettingsRead     = "settings.read"
	PermSettingsWrite    = "settings.write"
	PermStaffRead        = "staff.read"
	PermStaffWrite       = "staff.write"
	PermAuditRead        = "audit.read"
	PermMetricsRead      = "admin.metrics"
)

var DefaultPermissions = []string{
	PermTerminalUse,
	PermAttendanceRead,
	PermAttendanceEdit,
	PermAttendanceDelete,
	PermAttendanceExport,
	PermSettingsRead,
	PermSettingsWrite,
	PermStaffRead,
	PermStaffWrite,
	PermAuditRead,
	PermMetricsRead,
}

var RolePermissions = map[string][]string{
	RoleFrontDesk: {
		PermTerminalUse,
		PermAttendanceRead,
	},
	RoleManager: {
		PermTerminalUse,
		PermAttendanceRead,
		PermAttendanceEdit,
		PermAttendanceExport,
		PermSettingsRead,
		PermStaffRead,
	},
	RoleAdmin: {
		PermTerminalUse,
		PermAttendanceRead,
		PermAttendanceEdit,
		PermAttendanceDelete,
		PermAttendanceExport,
		PermSettingsRead,
		PermSettingsWrite,
		PermStaffRead,
		PermStaffWrite,
		PermAuditRead,
		PermMetricsRead,
	},
}
