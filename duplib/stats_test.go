package duplib_test

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/akab00m/dupclean/duplib"
	"github.com/stretchr/testify/suite"
)

type StatsAggregatorTestSuite struct {
	suite.Suite

	stats *duplib.StatsAggregator
}

func (suite *StatsAggregatorTestSuite) SetupTest() {
	suite.stats = duplib.NewStatsAggregator()
}

func (suite *StatsAggregatorTestSuite) TestEmpty() {
	snapshot := suite.stats.Snapshot()

	suite.NotEmpty(snapshot.InstanceID)
	suite.EqualValues(0, snapshot.MessagesProcessed)
	suite.EqualValues(0, snapshot.DistinctEstimate)
	suite.Empty(snapshot.ByContentType)
	suite.Zero(snapshot.DuplicateRate())
	suite.Zero(snapshot.AvgCheckDuration)
}

func (suite *StatsAggregatorTestSuite) TestAvgCheckDuration() {
	suite.stats.ObserveCheckDuration(time.Millisecond)
	suite.stats.ObserveCheckDuration(3 * time.Millisecond)

	suite.Equal(2*time.Millisecond, suite.stats.Snapshot().AvgCheckDuration)
}

func (suite *StatsAggregatorTestSuite) TestResetConstructor() {
	suite.stats.RecordOutcome(1, duplib.ContentText, false, true)

	other := duplib.NewStatsAggregator()

	suite.EqualValues(0, other.Snapshot().MessagesProcessed)
	suite.NotEqual(suite.stats.Snapshot().InstanceID, other.Snapshot().InstanceID)
}

func (suite *StatsAggregatorTestSuite) TestRecordOutcome() {
	suite.stats.RecordActivation(1, duplib.ActivationManual)
	suite.stats.RecordOutcome(1, duplib.ContentText, false, false)
	suite.stats.RecordOutcome(1, duplib.ContentText, false, true)
	suite.stats.RecordOutcome(1, duplib.ContentPhoto, true, true)
	suite.stats.RecordOutcome(1, duplib.ContentPhoto, false, false)

	snapshot := suite.stats.Snapshot()
	suite.EqualValues(4, snapshot.MessagesProcessed)
	suite.EqualValues(2, snapshot.DuplicatesFound)
	suite.EqualValues(1, snapshot.ForwardedDuplicates)
	suite.EqualValues(1, snapshot.OriginalDuplicates)
	suite.Equal(duplib.ContentTypeCounters{"text": 2, "photo": 2}, snapshot.ByContentType)
	suite.Equal(duplib.ContentTypeCounters{"text": 1, "photo": 1}, snapshot.DuplicatesByType)
	suite.InDelta(50.0, snapshot.DuplicateRate(), 0.001)

	view, ok := suite.stats.ChatSnapshot(1)
	suite.True(ok)
	suite.Equal("manual", view.ActivationReason)
	suite.EqualValues(4, view.MessagesProcessed)
	suite.EqualValues(2, view.DuplicatesFound)
}

func (suite *StatsAggregatorTestSuite) TestDeactivationKeepsGlobalTotals() {
	suite.stats.RecordActivation(1, duplib.ActivationAuto)
	suite.stats.RecordOutcome(1, duplib.ContentText, false, true)
	suite.stats.RecordEviction(1, 2)
	suite.stats.RecordSkip(1, duplib.SkipUnsupported)

	suite.EqualValues(1, suite.stats.Snapshot().ActiveChats)
	suite.EqualValues(1, suite.stats.Snapshot().AutoActivatedChats)

	suite.stats.RecordDeactivation(1)

	snapshot := suite.stats.Snapshot()
	suite.EqualValues(1, snapshot.MessagesProcessed)
	suite.EqualValues(1, snapshot.DuplicatesFound)
	suite.EqualValues(2, snapshot.Evictions)
	suite.EqualValues(1, snapshot.SkippedUnsupported)
	suite.EqualValues(0, snapshot.ActiveChats)
	suite.EqualValues(0, snapshot.AutoActivatedChats)
	suite.EqualValues(1, snapshot.AutoActivations)

	_, ok := suite.stats.ChatSnapshot(1)
	suite.False(ok)

	suite.stats.RecordActivation(1, duplib.ActivationManual)

	view, ok := suite.stats.ChatSnapshot(1)
	suite.True(ok)
	suite.EqualValues(0, view.MessagesProcessed)
}

func (suite *StatsAggregatorTestSuite) TestDeactivationOfUnknownChat() {
	suite.stats.RecordOutcome(5, duplib.ContentText, false, false)
	suite.stats.RecordDeactivation(5)
	suite.stats.RecordDeactivation(6)

	suite.EqualValues(0, suite.stats.Snapshot().ActiveChats)
}

func (suite *StatsAggregatorTestSuite) TestRecordDeletion() {
	suite.stats.RecordActivation(1, duplib.ActivationManual)
	suite.stats.RecordDeletion(1, true)
	suite.stats.RecordDeletion(1, true)
	suite.stats.RecordDeletion(1, false)

	snapshot := suite.stats.Snapshot()
	suite.EqualValues(2, snapshot.MessagesDeleted)
	suite.EqualValues(1, snapshot.DeleteFailures)

	view, ok := suite.stats.ChatSnapshot(1)
	suite.True(ok)
	suite.EqualValues(2, view.Deleted)
}

func (suite *StatsAggregatorTestSuite) TestDistinctEstimate() {
	f := duplib.Fingerprinter{}

	for i := 0; i < 1000; i++ {
		fp, _, _, err := f.Fingerprint(duplib.Message{Text: strconv.Itoa(i % 500)})
		suite.NoError(err)

		suite.stats.ObserveFingerprint(fp)
	}

	suite.InDelta(500, float64(suite.stats.Snapshot().DistinctEstimate), 50)
}

func (suite *StatsAggregatorTestSuite) TestSnapshotIsSerializable() {
	suite.stats.RecordOutcome(1, duplib.ContentVideoNote, true, true)

	data, err := json.Marshal(suite.stats.Snapshot())
	suite.NoError(err)

	parsed := map[string]interface{}{}
	suite.NoError(json.Unmarshal(data, &parsed))
	suite.EqualValues(1, parsed["messages_processed"])
	suite.EqualValues(1, parsed["forwarded_duplicates"])
	suite.Contains(parsed, "start_time")
	suite.NotContains(parsed, "memory")
	suite.Equal(map[string]interface{}{"video_note": 1.0},
		parsed["by_content_type"])
}

func TestStatsAggregator(t *testing.T) {
	t.Parallel()
	suite.Run(t, &StatsAggregatorTestSuite{})
}
