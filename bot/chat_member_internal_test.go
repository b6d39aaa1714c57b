package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/suite"
)

type ChatMemberTestSuite struct {
	BotTestSuiteBase
}

func (suite *ChatMemberTestSuite) Promote(chatType, oldStatus, newStatus string) {
	suite.bot.handleUpdate(context.Background(), tgbotapi.Update{
		MyChatMember: &tgbotapi.ChatMemberUpdated{
			Chat: tgbotapi.Chat{ID: testChatID, Type: chatType, Title: "Test"},
			From: tgbotapi.User{ID: 42},
			OldChatMember: tgbotapi.ChatMember{
				User:   &tgbotapi.User{ID: 123, IsBot: true},
				Status: oldStatus,
			},
			NewChatMember: tgbotapi.ChatMember{
				User:   &tgbotapi.User{ID: 123, IsBot: true},
				Status: newStatus,
			},
		},
	})
}

func (suite *ChatMemberTestSuite) TestAutoActivation() {
	suite.Promote("supergroup", "member", "administrator")

	suite.True(suite.registry.IsActive(testChatID))
	suite.Equal(1, suite.calls.Count("sendMessage"))
	suite.Equal(textAutoActivated, suite.calls.Get("sendMessage")[0]["text"])

	snapshot := suite.stats.Snapshot()
	suite.EqualValues(1, snapshot.AutoActivatedChats)
	suite.EqualValues(1, snapshot.AutoActivations)
}

func (suite *ChatMemberTestSuite) TestAutoActivationOfChannel() {
	suite.Promote("channel", "left", "administrator")

	suite.True(suite.registry.IsActive(testChatID))
}

func (suite *ChatMemberTestSuite) TestNoActivationInPrivateChat() {
	suite.Promote("private", "member", "administrator")

	suite.False(suite.registry.IsActive(testChatID))
	suite.Zero(suite.calls.Count("sendMessage"))
}

func (suite *ChatMemberTestSuite) TestAdminToAdminIsIgnored() {
	suite.Promote("supergroup", "administrator", "creator")

	suite.False(suite.registry.IsActive(testChatID))
}

func (suite *ChatMemberTestSuite) TestAutoActivationDisabled() {
	suite.bot.autoActivate = false

	suite.Promote("group", "member", "administrator")

	suite.False(suite.registry.IsActive(testChatID))
}

func (suite *ChatMemberTestSuite) TestWelcomeMessageDisabled() {
	suite.bot.welcomeMessage = false

	suite.Promote("group", "member", "administrator")

	suite.True(suite.registry.IsActive(testChatID))
	suite.Zero(suite.calls.Count("sendMessage"))
}

func (suite *ChatMemberTestSuite) TestRemoval() {
	suite.Promote("supergroup", "member", "administrator")
	suite.Promote("supergroup", "administrator", "kicked")

	suite.False(suite.registry.IsActive(testChatID))
	suite.EqualValues(0, suite.stats.Snapshot().AutoActivatedChats)
	suite.EqualValues(1, suite.stats.Snapshot().AutoActivations)

	suite.Promote("supergroup", "left", "administrator")
	suite.Promote("supergroup", "administrator", "left")

	suite.False(suite.registry.IsActive(testChatID))
	suite.EqualValues(2, suite.stats.Snapshot().AutoActivations)
}

func TestChatMember(t *testing.T) {
	t.Parallel()
	suite.Run(t, &ChatMemberTestSuite{})
}
