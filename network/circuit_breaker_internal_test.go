package network

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/akab00m/dupclean/internal/testlib"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CooldownDialerTestSuite struct {
	suite.Suite

	clockMutex     sync.Mutex
	clock          time.Time
	d              *cooldownDialer
	connMock       *testlib.NetConnMock
	baseDialerMock *DialerMock
}

func (suite *CooldownDialerTestSuite) SetupTest() {
	suite.clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.baseDialerMock = &DialerMock{}
	suite.connMock = &testlib.NetConnMock{}
	suite.d = newCooldownDialer(suite.baseDialerMock, 3, time.Minute)
	suite.d.now = func() time.Time {
		suite.clockMutex.Lock()
		defer suite.clockMutex.Unlock()

		return suite.clock
	}
}

func (suite *CooldownDialerTestSuite) TearDownTest() {
	suite.baseDialerMock.AssertExpectations(suite.T())
	suite.connMock.AssertExpectations(suite.T())
}

func (suite *CooldownDialerTestSuite) advance(d time.Duration) {
	suite.clockMutex.Lock()
	suite.clock = suite.clock.Add(d)
	suite.clockMutex.Unlock()
}

func (suite *CooldownDialerTestSuite) failures(address string, times int) {
	suite.baseDialerMock.On("DialContext", mock.Anything, "tcp", address).
		Times(times).
		Return((*net.TCPConn)(nil), io.EOF)
}

func (suite *CooldownDialerTestSuite) TestConcurrentSuccess() {
	suite.baseDialerMock.On("DialContext", mock.Anything, "tcp", "api.telegram.org:443").
		Times(5).
		Return(suite.connMock, nil)

	wg := &sync.WaitGroup{}
	errs := make(chan error, 5)

	for i := 0; i < 5; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := suite.d.DialContext(context.Background(), "tcp", "api.telegram.org:443")
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		suite.NoError(err)
	}

	suite.True(suite.d.Available())
}

func (suite *CooldownDialerTestSuite) TestCooldownAfterThreshold() {
	suite.failures("api.telegram.org:443", 3)

	for i := 0; i < 3; i++ {
		_, err := suite.d.Dial("tcp", "api.telegram.org:443")
		suite.ErrorIs(err, io.EOF)
	}

	suite.False(suite.d.Available())

	_, err := suite.d.Dial("tcp", "api.telegram.org:443")
	suite.ErrorIs(err, ErrCircuitBreakerOpened)
}

func (suite *CooldownDialerTestSuite) TestFailuresHaveToBeConsecutive() {
	suite.failures("bad:443", 4)
	suite.baseDialerMock.On("DialContext", mock.Anything, "tcp", "good:443").
		Once().
		Return(suite.connMock, nil)

	suite.d.Dial("tcp", "bad:443")  //nolint: errcheck
	suite.d.Dial("tcp", "bad:443")  //nolint: errcheck
	suite.d.Dial("tcp", "good:443") //nolint: errcheck
	suite.d.Dial("tcp", "bad:443")  //nolint: errcheck
	suite.d.Dial("tcp", "bad:443")  //nolint: errcheck

	suite.True(suite.d.Available())
}

func (suite *CooldownDialerTestSuite) TestRecovery() {
	suite.failures("api.telegram.org:443", 3)
	suite.baseDialerMock.On("DialContext", mock.Anything, "tcp", "api.telegram.org:443").
		Once().
		Return(suite.connMock, nil)

	for i := 0; i < 3; i++ {
		suite.d.Dial("tcp", "api.telegram.org:443") //nolint: errcheck
	}

	suite.advance(59 * time.Second)
	suite.False(suite.d.Available())

	suite.advance(time.Second)
	suite.True(suite.d.Available())

	conn, err := suite.d.Dial("tcp", "api.telegram.org:443")
	suite.NoError(err)
	suite.Equal(suite.connMock, conn)
}

func (suite *CooldownDialerTestSuite) TestCancelledCallerIsNotProxyFault() {
	ctx, cancel := context.WithCancel(context.Background())

	suite.baseDialerMock.On("DialContext", mock.Anything, "tcp", "api.telegram.org:443").
		Times(3).
		Run(func(_ mock.Arguments) { cancel() }).
		Return(suite.connMock, nil)
	suite.connMock.On("Close").Times(3).Return(nil)

	for i := 0; i < 3; i++ {
		_, err := suite.d.DialContext(ctx, "tcp", "api.telegram.org:443")
		suite.True(errors.Is(err, context.Canceled))
	}

	suite.True(suite.d.Available())
}

func TestCooldownDialer(t *testing.T) {
	t.Parallel()
	suite.Run(t, &CooldownDialerTestSuite{})
}
