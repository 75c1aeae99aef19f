package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：可恢复错误，状态未改变，重试触发动作即可
// - 5xxx：系统错误
const (
	OK          = 0
	Validation  = 4001
	Parse       = 4002
	LookupMiss  = 4004
	Credential  = 4010
	SystemError = 5000
)
