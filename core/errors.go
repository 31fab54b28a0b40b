package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分层（与请求处理约定一致）：
//   - 候选源失败、单条候选水合/打分失败：链路内部 fail-soft，不会以错误形式出现
//   - 只有请求本身非法（未知用户、非正 limit）才会作为错误返回给调用方
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "mixer"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleStore  = "store"  // 存储模块
	ModuleSource = "source" // 候选源模块
	ModuleMixer  = "mixer"  // 编排模块
)

// 请求级错误：唯一会返回给调用方的错误类别（见 mixer.Rank）。
var (
	// ErrUnknownUser 表示请求的用户不存在。
	ErrUnknownUser = NewDomainError(ModuleMixer, ErrorCodeNotFound, "mixer: unknown user")

	// ErrInvalidRequest 表示请求参数非法（例如 limit <= 0）。
	ErrInvalidRequest = NewDomainError(ModuleMixer, ErrorCodeInvalidInput, "mixer: invalid request")
)

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidRequest 检查错误是否为请求级非法输入。
func IsInvalidRequest(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
