package testlib

import (
	"context"

	"github.com/akab00m/dupclean/duplib"
	"github.com/stretchr/testify/mock"
)

type EventStreamMock struct {
	mock.Mock
}

func (e *EventStreamMock) Send(ctx context.Context, evt duplib.Event) {
	e.Called(ctx, evt)
}

type ActivationRecorderMock struct {
	mock.Mock
}

func (a *ActivationRecorderMock) RecordActivation(chatID int64, reason duplib.ActivationReason) {
	a.Called(chatID, reason)
}

func (a *ActivationRecorderMock) RecordDeactivation(chatID int64) {
	a.Called(chatID)
}
