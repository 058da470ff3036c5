package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldSessionID = "session_id"
	FieldUserID    = "user_id"
	FieldPage      = "page"
	FieldAmount    = "amount_cents"
	FieldTxType    = "transaction_type"
	FieldDuration  = "duration_ms"
	FieldStatus    = "status"
	FieldError     = "error"
)
