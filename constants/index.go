package constants

// Vai trò tài khoản
const (
	ROLE_ADMIN = "admin"
	ROLE_RRPP  = "rrpp"
	ROLE_STAFF = "staff"
)

var ROLES = []string{ROLE_ADMIN, ROLE_RRPP, ROLE_STAFF}

// Message chung
const (
	ERROR_INPUT          = "Invalid input"
	ERROR_INTERNAL_ERROR = "Internal server error"
	MISSING_LOGIN_INPUT  = "Missing username or password"
	INVALID_USERNAME     = "Invalid username"
	INVALID_PASSWORD     = "Invalid password"
	ACCOUNT_NOT_ACTIVE   = "Account is not active"
	NOT_PERMISSION       = "Not permission"
	NO_ORGANIZATION      = "User has no organization assigned"
	WRONG_ORGANIZATION   = "Resource does not belong to your organization"
	QUOTA_EXHAUSTED      = "Invitation quota exhausted or not assigned"
	EVENT_NOT_FOUND      = "Event not found"
	TICKET_NOT_FOUND     = "Ticket not found"
	DEVICE_NOT_FOUND     = "Device not found"
	INVALID_CREDENTIALS  = "Invalid credentials"
	NOTES_REQUIRED       = "Notes required for manual entry"
)
