package status

const (
	OK                    = "OK"
	CREATED               = "CREATED"
	BAD_REQUEST           = "BAD_REQUEST"
	UNAUTHORIZED          = "UNAUTHORIZED"
	FORBIDDEN             = "FORBIDDEN"
	NOT_FOUND             = "NOT_FOUND"
	CONFLICT              = "CONFLICT"
	UNPROCESSABLE_ENTITY  = "UNPROCESSABLE_ENTITY"
	INTERNAL_SERVER_ERROR = "INTERNAL_SERVER_ERROR"

	INVALID_TRANSITION            = "INVALID_TRANSITION"
	ALREADY_TERMINAL              = "ALREADY_TERMINAL"
	MISSING_REASON                = "MISSING_REASON"
	VALIDATION_FAILED             = "VALIDATION_FAILED"
	NOT_CONFIGURED                = "NOT_CONFIGURED"
	ORDER_ALREADY_PAID            = "ORDER_ALREADY_PAID"
	CHARGE_ALREADY_PENDING        = "CHARGE_ALREADY_PENDING"
	SIGNATURE_VERIFICATION_FAILED = "SIGNATURE_VERIFICATION_FAILED"
	UNKNOWN_CHARGE                = "UNKNOWN_CHARGE"
	GATEWAY_TIMEOUT               = "GATEWAY_TIMEOUT"
)
