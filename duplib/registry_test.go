package duplib_test

import (
	"testing"
	"time"

	"github.com/akab00m/dupclean/duplib"
	"github.com/akab00m/dupclean/internal/testlib"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type StoreRegistryTestSuite struct {
	suite.Suite

	recorderMock    *testlib.ActivationRecorderMock
	eventStreamMock *testlib.EventStreamMock
	registry        *duplib.StoreRegistry
}

func (suite *StoreRegistryTestSuite) SetupTest() {
	suite.recorderMock = &testlib.ActivationRecorderMock{}
	suite.eventStreamMock = &testlib.EventStreamMock{}
	suite.registry = duplib.NewStoreRegistry(duplib.StoreRegistryOpts{
		Capacity:    5,
		Recorder:    suite.recorderMock,
		EventStream: suite.eventStreamMock,
	})
}

func (suite *StoreRegistryTestSuite) TearDownTest() {
	suite.recorderMock.AssertExpectations(suite.T())
	suite.eventStreamMock.AssertExpectations(suite.T())
}

func (suite *StoreRegistryTestSuite) TestActivateIdempotent() {
	suite.recorderMock.On("RecordActivation", int64(10), duplib.ActivationManual).Once()
	suite.eventStreamMock.
		On("Send", mock.Anything, mock.AnythingOfType("duplib.EventActivated")).
		Once()

	suite.True(suite.registry.Activate(10, duplib.ActivationManual))
	suite.False(suite.registry.Activate(10, duplib.ActivationManual))
	suite.False(suite.registry.Activate(10, duplib.ActivationAuto))

	suite.True(suite.registry.IsActive(10))
	suite.Equal(1, suite.registry.ActiveCount())
	suite.Equal(0, suite.registry.AutoActivatedCount())
	suite.EqualValues(0, suite.registry.AutoActivations())
}

func (suite *StoreRegistryTestSuite) TestAutoActivation() {
	suite.recorderMock.On("RecordActivation", mock.Anything, mock.Anything).Twice()
	suite.eventStreamMock.On("Send", mock.Anything, mock.Anything).Twice()

	suite.registry.Activate(-100, duplib.ActivationAuto)
	suite.registry.Activate(3, duplib.ActivationManual)

	suite.Equal([]int64{-100, 3}, suite.registry.ActiveChats())
	suite.Equal(1, suite.registry.AutoActivatedCount())
	suite.EqualValues(1, suite.registry.AutoActivations())
}

func (suite *StoreRegistryTestSuite) TestDeactivateIdempotent() {
	suite.recorderMock.On("RecordActivation", int64(10), duplib.ActivationAuto).Once()
	suite.recorderMock.On("RecordDeactivation", int64(10)).Once()
	suite.eventStreamMock.On("Send", mock.Anything, mock.Anything).Twice()

	suite.False(suite.registry.Deactivate(10))
	suite.registry.Activate(10, duplib.ActivationAuto)
	suite.True(suite.registry.Deactivate(10))
	suite.False(suite.registry.Deactivate(10))

	suite.False(suite.registry.IsActive(10))
	suite.Equal(0, suite.registry.AutoActivatedCount())
	suite.EqualValues(1, suite.registry.AutoActivations())
}

func (suite *StoreRegistryTestSuite) TestGetOrCreateInactive() {
	_, err := suite.registry.GetOrCreate(10)
	suite.ErrorIs(err, duplib.ErrChatNotActive)
	suite.False(suite.registry.IsActive(10))
}

func (suite *StoreRegistryTestSuite) TestDeactivationClearsState() {
	suite.recorderMock.On("RecordActivation", mock.Anything, mock.Anything)
	suite.recorderMock.On("RecordDeactivation", mock.Anything)
	suite.eventStreamMock.On("Send", mock.Anything, mock.Anything)

	suite.registry.Activate(10, duplib.ActivationManual)

	handle, err := suite.registry.GetOrCreate(10)
	suite.NoError(err)
	suite.Equal(int64(10), handle.ChatID())

	suite.NoError(handle.With(func(store *duplib.ChatStore) error {
		for i := 0; i < 5; i++ {
			store.Insert(duplib.Fingerprint{byte(i + 1)}, duplib.Record{})
		}

		return nil
	}))
	suite.Equal(5, suite.registry.MemoryStats().TotalEntries)

	suite.registry.Deactivate(10)
	suite.registry.Activate(10, duplib.ActivationManual)

	handle, err = suite.registry.GetOrCreate(10)
	suite.NoError(err)
	suite.NoError(handle.With(func(store *duplib.ChatStore) error {
		suite.Equal(0, store.Size())

		return nil
	}))
}

func (suite *StoreRegistryTestSuite) TestMemoryStats() {
	suite.recorderMock.On("RecordActivation", mock.Anything, mock.Anything)
	suite.eventStreamMock.On("Send", mock.Anything, mock.Anything)

	suite.registry.Activate(1, duplib.ActivationManual)
	suite.registry.Activate(2, duplib.ActivationManual)

	for chatID, count := range map[int64]int{1: 2, 2: 7} {
		handle, err := suite.registry.GetOrCreate(chatID)
		suite.NoError(err)

		suite.NoError(handle.With(func(store *duplib.ChatStore) error {
			for i := 0; i < count; i++ {
				store.Insert(duplib.Fingerprint{byte(i + 1)}, duplib.Record{})
			}

			return nil
		}))
	}

	suite.Equal(duplib.MemoryStats{
		ActiveChats:  2,
		TotalEntries: 7,
		LargestChat:  5,
		PerChatLimit: 5,
	}, suite.registry.MemoryStats())
}

func (suite *StoreRegistryTestSuite) TestExpireBefore() {
	suite.recorderMock.On("RecordActivation", mock.Anything, mock.Anything)
	suite.eventStreamMock.On("Send", mock.Anything, mock.Anything)

	suite.registry.Activate(1, duplib.ActivationManual)

	handle, err := suite.registry.GetOrCreate(1)
	suite.NoError(err)

	now := time.Now()

	suite.NoError(handle.With(func(store *duplib.ChatStore) error {
		store.Insert(duplib.Fingerprint{1}, duplib.Record{FirstSeenAt: now.Add(-time.Hour)})
		store.Insert(duplib.Fingerprint{2}, duplib.Record{FirstSeenAt: now})

		return nil
	}))

	suite.Equal(1, suite.registry.ExpireBefore(now.Add(-time.Minute)))
	suite.Equal(1, suite.registry.MemoryStats().TotalEntries)
}

func TestStoreRegistry(t *testing.T) {
	t.Parallel()
	suite.Run(t, &StoreRegistryTestSuite{})
}
