package services

import (
	"context"
	"testing"

	"lovelush_server/models"
)

type testEnv struct {
	fake      *fakeDynamo
	dynamo    *DynamoService
	users     *UserStore
	matches   *MatchStore
	chatrooms *ChatroomStore
	integrity *IntegrityService
}

// newTestEnv wires the full store graph against an in-memory fake, the
// same way main does against the real client.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	fake := newFakeDynamo()
	dynamo := &DynamoService{Client: fake}

	matchSeq := &Sequencer{Dynamo: dynamo, Table: models.MatchesTable, KeyAttribute: "matchId"}
	chatroomSeq := &Sequencer{Dynamo: dynamo, Table: models.ChatroomsTable, KeyAttribute: "chatroomId"}
	messageSeq := &Sequencer{Dynamo: dynamo, Table: models.MessagesTable, KeyAttribute: "messageId"}
	matchSeq.Initialize(ctx)
	chatroomSeq.Initialize(ctx)
	messageSeq.Initialize(ctx)

	users := NewUserStore(dynamo)
	matches := NewMatchStore(dynamo, matchSeq, users)
	chatrooms := NewChatroomStore(dynamo, chatroomSeq, messageSeq, users, matches)
	users.Matches = matches
	users.Chatrooms = chatrooms

	return &testEnv{
		fake:      fake,
		dynamo:    dynamo,
		users:     users,
		matches:   matches,
		chatrooms: chatrooms,
		integrity: &IntegrityService{Dynamo: dynamo, Users: users, Matches: matches, Chatrooms: chatrooms},
	}
}
