package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldDuration      = "duration_ms"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldExpenseID     = "expense_id"
	FieldProposalID    = "proposal_id"
	FieldProjectID     = "project_id"
	FieldParticipantID = "participant_id"
	FieldViewerID      = "viewer_id"
	FieldAmountPaise   = "amount_paise"
	FieldCategory      = "category"
	FieldSource        = "source"
	FieldState         = "state"
	FieldFormat        = "format"
	FieldSheetsRef     = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentPrivacy  = "privacy"
	ComponentApproval = "approval"
	ComponentExpense  = "expense"
	ComponentExport   = "export"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentSheets   = "sheets"
	ComponentCache    = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpList     = "list"
	OpVote     = "vote"
	OpWithdraw = "withdraw"
	OpResolve  = "resolve"
	OpExport   = "export"
	OpAppend   = "append"
	OpSync     = "sync"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
