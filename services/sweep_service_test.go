package services

import (
	"context"
	"testing"
	"time"

	"lovelush_server/models"

	"github.com/stretchr/testify/require"
)

func TestSweepPersistsAllStores(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	env.users.CreateUser(2, "Bob", models.GenderMale)
	match := env.matches.CreateMatch(1, 2, "a", "b", 50)
	chatroomID, err := env.chatrooms.GetOrCreateChatroom(ctx, 1, 2, match.MatchID)
	require.NoError(t, err)

	sweep := &SweepService{
		Integrity: env.integrity,
		Users:     env.users,
		Matches:   env.matches,
		Chatrooms: env.chatrooms,
		Interval:  time.Minute,
	}
	sweep.Sweep(ctx)

	require.True(t, env.fake.has(models.UsersTable, 1))
	require.True(t, env.fake.has(models.UsersTable, 2))
	require.True(t, env.fake.has(models.MatchesTable, match.MatchID))
	require.True(t, env.fake.has(models.ChatroomsTable, chatroomID))
}

func TestSweepRepairsBeforePersisting(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)
	match := env.matches.CreateMatch(1, 99, "a", "b", 50)

	sweep := &SweepService{
		Integrity: env.integrity,
		Users:     env.users,
		Matches:   env.matches,
		Chatrooms: env.chatrooms,
		Interval:  time.Minute,
	}
	sweep.Sweep(ctx)

	// The broken match never reaches storage and the surviving user is
	// persisted without the dangling ref.
	require.False(t, env.fake.has(models.MatchesTable, match.MatchID))
	var users []models.User
	require.NoError(t, env.dynamo.ScanAllInto(ctx, models.UsersTable, &users))
	require.Len(t, users, 1)
	require.Empty(t, users[0].MatchIDs)
}

func TestRunPerformsFinalSweepOnShutdown(t *testing.T) {
	env := newTestEnv(t)
	env.users.CreateUser(1, "Alice", models.GenderFemale)

	sweep := &SweepService{
		Integrity: env.integrity,
		Users:     env.users,
		Matches:   env.matches,
		Chatrooms: env.chatrooms,
		Interval:  time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweep.Run(ctx)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep loop did not stop")
	}

	require.True(t, env.fake.has(models.UsersTable, 1))
}
