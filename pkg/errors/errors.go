package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// WithMessage 返回同错误码、不同提示信息的副本。
func (d Definition) WithMessage(message string) Definition {
	return Definition{Code: d.Code, Message: message}
}

// 请求相关错误。
var (
	InvalidRequest = Definition{Code: "INVALID_REQUEST", Message: "Invalid request body"}
	InvalidPath    = Definition{Code: "INVALID_PATH", Message: "Invalid path parameter"}
)

// 预约模块错误。
var (
	ReservationNotFound = Definition{Code: "RESERVATION_NOT_FOUND", Message: "Reservation not found"}
)

// 基础设施错误。
var (
	StorageFault        = Definition{Code: "STORAGE_FAULT", Message: "Storage unavailable"}
	TooManyRequests     = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
	InternalServerError = Definition{Code: "INTERNAL_SERVER_ERROR", Message: "Internal server error"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidRequest.Code:      InvalidRequest,
	InvalidPath.Code:         InvalidPath,
	ReservationNotFound.Code: ReservationNotFound,
	StorageFault.Code:        StorageFault,
	TooManyRequests.Code:     TooManyRequests,
	InternalServerError.Code: InternalServerError,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
