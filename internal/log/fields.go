package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldCardID       = "card_id"
	FieldObligationID = "obligation_id"
	FieldMonth        = "month"
	FieldYear         = "year"
	FieldWindowStart  = "window_start"
	FieldWindowEnd    = "window_end"
	FieldAmountCents  = "amount_cents"
	FieldCycleStatus  = "cycle_status"
	FieldOccurrences  = "occurrences"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentCycle   = "cycle"
	ComponentProject = "projection"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpProject  = "project"
	OpResolve  = "resolve"
	OpPay      = "pay"
	OpSettle   = "settle"
	OpRefresh  = "refresh"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
