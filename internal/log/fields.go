package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldTransactionID = "transaction_id"
	FieldCategoryID    = "category_id"
	FieldGoalID        = "goal_id"
	FieldAmountCents   = "amount_cents"
	FieldYear          = "year"
	FieldDateFrom      = "date_from"
	FieldDateTo        = "date_to"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAuth      = "auth"
	ComponentLedger    = "ledger"
	ComponentGoals     = "goals"
	ComponentDashboard = "dashboard"
	ComponentAnalytics = "analytics"
	ComponentCharts    = "charts"
	ComponentScheduler = "scheduler"
	ComponentCache     = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpAddFunds = "add_funds"
	OpSignup   = "signup"
	OpLogin    = "login"
	OpLogout   = "logout"
	OpPurge    = "purge"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
