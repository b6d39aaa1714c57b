package stats_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akab00m/dupclean/duplib"
	"github.com/akab00m/dupclean/events"
	"github.com/akab00m/dupclean/stats"
	"github.com/stretchr/testify/suite"
)

type PrometheusTestSuite struct {
	suite.Suite

	factory    *stats.PrometheusFactory
	observer   events.Observer
	httpServer *httptest.Server
}

func (suite *PrometheusTestSuite) SetupTest() {
	suite.factory = stats.NewPrometheus("dupclean", "/metrics", "1.2.3")
	suite.observer = suite.factory.Make()
	suite.httpServer = httptest.NewServer(suite.factory.Handler())
}

func (suite *PrometheusTestSuite) TearDownTest() {
	suite.observer.Shutdown()
	suite.httpServer.Close()
}

func (suite *PrometheusTestSuite) Get() string {
	resp, err := http.Get(suite.httpServer.URL + "/metrics") //nolint: noctx
	suite.NoError(err)

	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	suite.NoError(err)

	return string(data)
}

func (suite *PrometheusTestSuite) TestBuildInfo() {
	suite.Contains(suite.Get(), `dupclean_build_info{version="1.2.3"} 1`)
}

func (suite *PrometheusTestSuite) TestChecked() {
	suite.observer.EventActivated(duplib.NewEventActivated(1, duplib.ActivationAuto))
	suite.observer.EventChecked(duplib.NewEventChecked(1, duplib.Verdict{
		Status:       duplib.StatusDuplicate,
		ContentType:  duplib.ContentPhoto,
		WasForwarded: true,
	}, time.Millisecond))
	suite.observer.EventChecked(duplib.NewEventChecked(2, duplib.Verdict{
		Status:      duplib.StatusNew,
		ContentType: duplib.ContentText,
	}, time.Millisecond))

	data := suite.Get()

	suite.Contains(data, `dupclean_activations{activation="auto"} 1`)
	suite.Contains(data,
		`dupclean_checked_messages{activation="auto",content_type="photo",verdict="duplicate"} 1`)
	suite.Contains(data,
		`dupclean_checked_messages{activation="unknown",content_type="text",verdict="new"} 1`)
	suite.Contains(data, `dupclean_duplicates{content_type="photo",origin="forwarded"} 1`)
	suite.Contains(data, `dupclean_check_duration_seconds_count 2`)
}

func (suite *PrometheusTestSuite) TestLifecycle() {
	suite.observer.EventActivated(duplib.NewEventActivated(1, duplib.ActivationManual))
	suite.observer.EventSkipped(duplib.NewEventSkipped(1, duplib.SkipRedelivery))
	suite.observer.EventEvicted(duplib.NewEventEvicted(1, 3))
	suite.observer.EventDeleted(duplib.NewEventDeleted(1, duplib.ContentSticker))
	suite.observer.EventDeleteFailed(duplib.NewEventDeleteFailed(1, "no_rights"))
	suite.observer.EventDeactivated(duplib.NewEventDeactivated(1, 5))
	suite.observer.EventStoreSize(duplib.NewEventStoreSize(duplib.MemoryStats{
		ActiveChats:  2,
		TotalEntries: 15,
		LargestChat:  10,
	}))

	data := suite.Get()

	suite.Contains(data, `dupclean_skipped_messages{reason="redelivery"} 1`)
	suite.Contains(data, `dupclean_evictions 3`)
	suite.Contains(data, `dupclean_deleted_messages{content_type="sticker"} 1`)
	suite.Contains(data, `dupclean_delete_failures{reason="no_rights"} 1`)
	suite.Contains(data, `dupclean_deactivations 1`)
	suite.Contains(data, `dupclean_dropped_records 5`)
	suite.Contains(data, `dupclean_active_chats 2`)
	suite.Contains(data, `dupclean_store_entries 15`)
	suite.Contains(data, `dupclean_largest_chat_store 10`)
}

func TestPrometheus(t *testing.T) {
	t.Parallel()
	suite.Run(t, &PrometheusTestSuite{})
}
