package errcode

// 导出结果错误码约定：
// - 4xxx：输入问题，重试无意义
// - 5xxx：系统错误，可重试
const (
	ResumeMissing = 4004
	RenderFailed  = 4220
	SystemError   = 5000
	StorageError  = 5030
)

// Retryable 判断错误码对应的失败是否值得重试。
func Retryable(code int) bool {
	return code >= 5000
}
