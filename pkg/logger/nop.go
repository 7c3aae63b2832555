package logger

// NopLogger discards everything. Used in tests.
type NopLogger struct{}

// NewNop returns a logger that drops all output
func NewNop() *NopLogger {
	return &NopLogger{}
}

func (NopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (NopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (NopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (NopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (NopLogger) Fatal(msg string, keysAndValues ...interface{}) {}
func (l NopLogger) With(keysAndValues ...interface{}) Logger     { return l }
