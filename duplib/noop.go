package duplib

import "context"

type noopRecorder struct{}

func (noopRecorder) RecordActivation(_ int64, _ ActivationReason) {}
func (noopRecorder) RecordDeactivation(_ int64)                  {}

type noopEventStream struct{}

func (noopEventStream) Send(_ context.Context, _ Event) {}

type noopLogger struct{}

func (n noopLogger) Named(_ string) Logger             { return n }
func (n noopLogger) BindInt(_ string, _ int) Logger     { return n }
func (n noopLogger) BindInt64(_ string, _ int64) Logger { return n }
func (n noopLogger) BindStr(_, _ string) Logger         { return n }
func (noopLogger) Printf(_ string, _ ...interface{})    {}
func (noopLogger) Info(_ string)                        {}
func (noopLogger) InfoError(_ string, _ error)          {}
func (noopLogger) Warning(_ string)                     {}
func (noopLogger) WarningError(_ string, _ error)       {}
func (noopLogger) Debug(_ string)                       {}
func (noopLogger) DebugError(_ string, _ error)         {}
