package logger

import "github.com/akab00m/dupclean/duplib"

type noopLogger struct{}

func (n noopLogger) Named(_ string) duplib.Logger             { return n }
func (n noopLogger) BindInt(_ string, _ int) duplib.Logger     { return n }
func (n noopLogger) BindInt64(_ string, _ int64) duplib.Logger { return n }
func (n noopLogger) BindStr(_, _ string) duplib.Logger         { return n }
func (n noopLogger) Printf(_ string, _ ...interface{})         {}
func (n noopLogger) Info(_ string)                             {}
func (n noopLogger) InfoError(_ string, _ error)               {}
func (n noopLogger) Warning(_ string)                          {}
func (n noopLogger) WarningError(_ string, _ error)            {}
func (n noopLogger) Debug(_ string)                            {}
func (n noopLogger) DebugError(_ string, _ error)              {}

// NewNoopLogger returns a logger which discards all events.
func NewNoopLogger() duplib.Logger {
	return noopLogger{}
}
