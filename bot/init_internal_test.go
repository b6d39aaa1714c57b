package bot

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/akab00m/dupclean/duplib"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

const (
	testToken    = "123:abc"
	testChatID   = int64(-1001234567890)
	testUsername = "dup_cleaner_bot"
)

func testURL(method string) string {
	return fmt.Sprintf(tgbotapi.APIEndpoint, testToken, method)
}

// apiCalls collects form values of Bot API calls per method.
type apiCalls struct {
	mutex sync.Mutex
	calls map[string][]map[string]string
}

func (a *apiCalls) record(method string, req *http.Request) {
	req.ParseForm() //nolint: errcheck

	values := map[string]string{}

	for k := range req.Form {
		values[k] = req.Form.Get(k)
	}

	a.mutex.Lock()
	a.calls[method] = append(a.calls[method], values)
	a.mutex.Unlock()
}

func (a *apiCalls) Get(method string) []map[string]string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return append([]map[string]string{}, a.calls[method]...)
}

func (a *apiCalls) Count(method string) int {
	return len(a.Get(method))
}

type BotTestSuiteBase struct {
	suite.Suite

	transport *httpmock.MockTransport
	calls     *apiCalls
	registry  *duplib.StoreRegistry
	stats     *duplib.StatsAggregator
	detector  *duplib.Detector
	bot       *Bot
}

func (suite *BotTestSuiteBase) SetupTest() {
	suite.transport = httpmock.NewMockTransport()
	suite.calls = &apiCalls{calls: map[string][]map[string]string{}}

	suite.transport.RegisterResponder(http.MethodPost, testURL("getMe"),
		httpmock.NewStringResponder(http.StatusOK,
			`{"ok":true,"result":{"id":123,"is_bot":true,"first_name":"Cleaner","username":"`+testUsername+`"}}`))
	suite.RespondOK("sendMessage",
		`{"message_id":1000,"date":0,"chat":{"id":`+strconv.FormatInt(testChatID, 10)+`,"type":"supergroup"}}`)
	suite.RespondOK("deleteMessage", `true`)

	suite.stats = duplib.NewStatsAggregator()
	suite.registry = duplib.NewStoreRegistry(duplib.StoreRegistryOpts{
		Capacity: 100,
		Recorder: suite.stats,
	})

	detector, err := duplib.NewDetector(duplib.DetectorOpts{
		Registry: suite.registry,
		Stats:    suite.stats,
	})
	suite.Require().NoError(err)

	suite.detector = detector

	bot, err := NewBot(Opts{
		Token:            testToken,
		HTTPClient:       &http.Client{Transport: suite.transport},
		Detector:         suite.detector,
		Workers:          2,
		MaxErrorsPerChat: 2,
		RetryAttempts:    2,
	})
	suite.Require().NoError(err)

	bot.deleter.initialInterval = time.Millisecond
	suite.bot = bot
}

func (suite *BotTestSuiteBase) TearDownTest() {
	suite.bot.Shutdown()
}

// RespondOK registers a successful response of a method, recording calls.
func (suite *BotTestSuiteBase) RespondOK(method, result string) {
	suite.Respond(method, http.StatusOK, `{"ok":true,"result":`+result+`}`)
}

func (suite *BotTestSuiteBase) Respond(method string, status int, body string) {
	suite.transport.RegisterResponder(http.MethodPost, testURL(method),
		func(req *http.Request) (*http.Response, error) {
			suite.calls.record(method, req)

			return httpmock.NewStringResponse(status, body), nil
		})
}

func textMessage(messageID int, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: messageID,
		Chat:      &tgbotapi.Chat{ID: testChatID, Type: "supergroup"},
		From:      &tgbotapi.User{ID: 42, FirstName: "User"},
		Text:      text,
	}
}

func commandMessage(messageID int, command string) *tgbotapi.Message {
	msg := textMessage(messageID, command)
	msg.Entities = []tgbotapi.MessageEntity{{
		Type:   "bot_command",
		Offset: 0,
		Length: len(command),
	}}

	return msg
}
