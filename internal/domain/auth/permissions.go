package auth

const (
	RoleEmployee    = "Employee"
	RoleManager     = "Manager"
	RoleHR          = "HR"
	RoleSystemAdmin = "SystemAdmin"
	RoleService     = "Service"
)

const (
	PermEmployeesRead  = "employees.read"
	PermDocumentsRead  = "documents.read"
	PermLicensesRead   = "licenses.read"
	PermLicensesWrite  = "licenses.write"
	PermAlertsRead     = "alerts.read"
	PermProbationRead  = "probation.read"
	PermProbationWrite = "probation.write"
	PermJobsRun        = "jobs.run"
	PermAuditRead      = "audit.read"
	PermSensitiveRead  = "records.sensitive.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermDocumentsRead,
		PermLicensesRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermDocumentsRead,
		PermLicensesRead,
		PermAlertsRead,
		PermProbationRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermDocumentsRead,
		PermLicensesRead,
		PermLicensesWrite,
		PermAlertsRead,
		PermProbationRead,
		PermProbationWrite,
		PermAuditRead,
		PermSensitiveRead,
	},
	RoleSystemAdmin: {
		PermJobsRun,
		PermAuditRead,
		PermAlertsRead,
	},
	RoleService: {
		PermEmployeesRead,
		PermDocumentsRead,
		PermLicensesRead,
		PermAlertsRead,
		PermProbationRead,
	},
}

// Allowed reports whether role grants permission. Unknown roles grant nothing.
func Allowed(role, permission string) bool {
	for _, granted := range RolePermissions[role] {
		if granted == permission {
			return true
		}
	}
	return false
}
