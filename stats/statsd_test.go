package stats_test

import (
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akab00m/dupclean/duplib"
	"github.com/akab00m/dupclean/logger"
	"github.com/akab00m/dupclean/stats"
	"github.com/stretchr/testify/suite"
)

type statsdFakeServer struct {
	conn net.PacketConn

	mutex sync.Mutex
	data  strings.Builder
	done  chan struct{}
}

func (s *statsdFakeServer) Addr() string {
	return s.conn.LocalAddr().String()
}

func (s *statsdFakeServer) String() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.data.String()
}

func (s *statsdFakeServer) Close() {
	s.conn.Close()
	<-s.done
}

func (s *statsdFakeServer) serve() {
	defer close(s.done)

	buf := make([]byte, 65536)

	for {
		n, _, err := s.conn.ReadFrom(buf)
		if err != nil {
			return
		}

		s.mutex.Lock()
		s.data.Write(buf[:n])
		s.data.WriteByte('\n')
		s.mutex.Unlock()
	}
}

func newStatsdFakeServer() (*statsdFakeServer, error) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	rv := &statsdFakeServer{
		conn: conn,
		done: make(chan struct{}),
	}

	go rv.serve()

	return rv, nil
}

type StatsdTestSuite struct {
	suite.Suite

	server  *statsdFakeServer
	factory stats.StatsdFactory
}

func (suite *StatsdTestSuite) SetupTest() {
	server, err := newStatsdFakeServer()
	suite.Require().NoError(err)

	factory, err := stats.NewStatsd(server.Addr(), logger.NewNoopLogger(), "dupclean", "influxdb")
	suite.Require().NoError(err)

	suite.server = server
	suite.factory = factory
}

func (suite *StatsdTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *StatsdTestSuite) TestUnknownTagFormat() {
	_, err := stats.NewStatsd(suite.server.Addr(), logger.NewNoopLogger(), "dupclean", "xml")
	suite.Error(err)
}

func (suite *StatsdTestSuite) TestEvents() {
	observer := suite.factory.Make()

	observer.EventActivated(duplib.NewEventActivated(10, duplib.ActivationAuto))
	observer.EventChecked(duplib.NewEventChecked(10, duplib.Verdict{
		Status:      duplib.StatusDuplicate,
		ContentType: duplib.ContentVoice,
	}, time.Millisecond))
	observer.EventDeleted(duplib.NewEventDeleted(10, duplib.ContentVoice))
	observer.EventStoreSize(duplib.NewEventStoreSize(duplib.MemoryStats{TotalEntries: 42}))
	observer.Shutdown()

	suite.NoError(suite.factory.Close())

	suite.Eventually(func() bool {
		data := suite.server.String()

		return strings.Contains(data, "dupclean.checked_messages,") &&
			strings.Contains(data, "activation=auto") &&
			strings.Contains(data, "dupclean.duplicates,") &&
			strings.Contains(data, "origin=original") &&
			strings.Contains(data, "dupclean.deleted_messages,content_type=voice:1|c") &&
			strings.Contains(data, "dupclean.store_entries:42|g")
	}, 2*time.Second, 20*time.Millisecond)
}

func TestStatsd(t *testing.T) {
	t.Parallel()
	suite.Run(t, &StatsdTestSuite{})
}
