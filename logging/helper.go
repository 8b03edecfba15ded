package logging

// NewLogger 创建一个默认的控制台 Logger（便于测试使用）
func NewLogger() Logger {
	l, err := NewLoggingBuilder().Build()
	if err != nil {
		return NewNop()
	}
	return l
}
