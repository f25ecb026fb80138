package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"lovelush_server/models"

	"github.com/stretchr/testify/require"
)

func TestGetOrCreateChatroomIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	env.users.CreateUser(2, "Bob", models.GenderMale)
	match := env.matches.CreateMatch(1, 2, "a", "b", 50)

	first, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)
	require.Positive(t, first)

	second, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)
	require.Equal(t, first, second)

	linked, _ := env.matches.GetMatch(match.MatchID)
	require.NotNil(t, linked.ChatroomID)
	require.Equal(t, first, *linked.ChatroomID)
	require.True(t, env.fake.has(models.ChatroomsTable, first))
}

func TestGetOrCreateChatroomValidatesReferences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	env.users.CreateUser(2, "Bob", models.GenderMale)
	match := env.matches.CreateMatch(1, 2, "a", "b", 50)

	_, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, 9999)
	require.ErrorIs(t, err, ErrMatchNotFound)

	_, err = env.chatrooms.GetOrCreateChatroom(ctx, 1, 99, match.MatchID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetOrCreateChatroomUnwindsOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	env.users.CreateUser(2, "Bob", models.GenderMale)
	match := env.matches.CreateMatch(1, 2, "a", "b", 50)

	env.fake.failPut[models.ChatroomsTable] = errors.New("storage down")
	_, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.Error(t, err)

	// Nothing may survive the failed creation.
	require.Empty(t, env.chatrooms.All())
	unlinked, _ := env.matches.GetMatch(match.MatchID)
	require.Nil(t, unlinked.ChatroomID)

	// A retry after storage recovers succeeds.
	delete(env.fake.failPut, models.ChatroomsTable)
	chatroomID, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)
	require.Positive(t, chatroomID)
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	env.users.CreateUser(2, "Bob", models.GenderMale)
	match := env.matches.CreateMatch(1, 2, "a", "b", 50)
	chatroomID, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)

	receipt, err := env.chatrooms.SendMessage(ctx, chatroomID, 1, "hello")
	require.NoError(t, err)
	require.True(t, receipt.Delivered)
	require.Equal(t, match.MatchID, receipt.MatchID)
	require.Positive(t, receipt.MessageID)
	require.NotEmpty(t, receipt.SentAt)

	require.True(t, env.fake.has(models.MessagesTable, receipt.MessageID))
	room, _ := env.chatrooms.GetChatroom(chatroomID)
	require.Equal(t, []int64{receipt.MessageID}, room.MessageIDs)
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	env.users.CreateUser(2, "Bob", models.GenderMale)
	env.users.CreateUser(3, "Carol", models.GenderFemale)
	match := env.matches.CreateMatch(1, 2, "a", "b", 50)
	chatroomID, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)

	_, err = env.chatrooms.SendMessage(ctx, chatroomID, 3, "intruding")
	require.ErrorIs(t, err, ErrNotParticipant)

	_, err = env.chatrooms.SendMessage(ctx, 9999, 1, "nowhere")
	require.ErrorIs(t, err, ErrChatroomNotFound)
}

func TestSendMessagePersistFailureLeavesListUntouched(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	env.users.CreateUser(2, "Bob", models.GenderMale)
	match := env.matches.CreateMatch(1, 2, "a", "b", 50)
	chatroomID, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)

	env.fake.failPut[models.MessagesTable] = errors.New("storage down")
	receipt, err := env.chatrooms.SendMessage(ctx, chatroomID, 1, "lost")
	require.Error(t, err)
	require.False(t, receipt.Delivered)
	require.Equal(t, match.MatchID, receipt.MatchID)

	room, _ := env.chatrooms.GetChatroom(chatroomID)
	require.Empty(t, room.MessageIDs)
}

func TestGetHistoryOrdersAndNamesSenders(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	env.users.CreateUser(2, "Bob", models.GenderMale)
	match := env.matches.CreateMatch(1, 2, "a", "b", 50)
	chatroomID, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)

	senders := []int64{1, 2, 1, 2, 1}
	for i, sender := range senders {
		_, err := env.chatrooms.SendMessage(ctx, chatroomID, sender, fmt.Sprintf("msg-%d", i))
		require.NoError(t, err)
	}

	history, err := env.chatrooms.GetHistory(ctx, chatroomID, 1)
	require.NoError(t, err)
	require.Len(t, history, len(senders))
	for i, entry := range history {
		require.Equal(t, fmt.Sprintf("msg-%d", i), entry.Content)
		require.Equal(t, senders[i], entry.SenderID)
		if senders[i] == 1 {
			require.Equal(t, models.SelfSenderName, entry.SenderName)
		} else {
			require.Equal(t, "Bob", entry.SenderName)
		}
	}

	asBob, err := env.chatrooms.GetHistory(ctx, chatroomID, 2)
	require.NoError(t, err)
	require.Equal(t, "Alice", asBob[0].SenderName)
	require.Equal(t, models.SelfSenderName, asBob[1].SenderName)

	_, err = env.chatrooms.GetHistory(ctx, 9999, 1)
	require.ErrorIs(t, err, ErrChatroomNotFound)
}

// Full conversation flow: match, chatroom, messages from both sides,
// histories consistent for both participants after a reload.
func TestConversationFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	env.users.CreateUser(2, "Bob", models.GenderMale)
	match := env.matches.CreateMatch(1, 2, "mutual friends", "mutual friends", 90)

	chatroomID, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)

	_, err = env.chatrooms.SendMessage(ctx, chatroomID, 1, "hey!")
	require.NoError(t, err)
	_, err = env.chatrooms.SendMessage(ctx, chatroomID, 2, "hey yourself")
	require.NoError(t, err)

	// Persist everything and reload into a fresh store graph.
	env.users.SaveAll(ctx)
	env.matches.SaveAll(ctx)
	env.chatrooms.SaveAll(ctx)

	users := NewUserStore(env.dynamo)
	matches := NewMatchStore(env.dynamo, env.matches.Sequence, users)
	chatrooms := NewChatroomStore(env.dynamo, env.chatrooms.Sequence, env.chatrooms.MessageSequence, users, matches)
	users.Matches = matches
	users.Chatrooms = chatrooms
	require.NoError(t, users.LoadAll(ctx))
	require.NoError(t, matches.LoadAll(ctx))
	require.NoError(t, chatrooms.LoadAll(ctx))

	again, err := chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)
	require.Equal(t, chatroomID, again)

	history, err := chatrooms.GetHistory(ctx, chatroomID, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "hey!", history[0].Content)
	require.Equal(t, "Alice", history[0].SenderName)
	require.Equal(t, models.SelfSenderName, history[1].SenderName)
}

func TestDeleteChatroomAndMessages(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	env.users.CreateUser(2, "Bob", models.GenderMale)
	match := env.matches.CreateMatch(1, 2, "a", "b", 50)
	chatroomID, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)
	receipt, err := env.chatrooms.SendMessage(ctx, chatroomID, 1, "bye")
	require.NoError(t, err)

	require.NoError(t, env.chatrooms.DeleteChatroomAndMessages(ctx, chatroomID))
	_, ok := env.chatrooms.GetChatroom(chatroomID)
	require.False(t, ok)
	require.False(t, env.fake.has(models.ChatroomsTable, chatroomID))
	require.False(t, env.fake.has(models.MessagesTable, receipt.MessageID))
}
