// Package storagetest holds the behaviour every storage backend must share.
// Backend test packages call Run with a constructor for a fresh, migrated
// database.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Noah170803/eventio/internal/domain/events"
	"github.com/Noah170803/eventio/internal/domain/users"
	"github.com/stretchr/testify/require"
)

// Repository is the part of storage.Repository exercised here.
type Repository interface {
	Users() users.Repository
	Events() events.Repository
}

// Run executes the conformance suite. newRepo must return an empty database.
func Run(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newRepo(t)) })
	t.Run("Sessions", func(t *testing.T) { testSessions(t, newRepo(t)) })
	t.Run("Events", func(t *testing.T) { testEvents(t, newRepo(t)) })
	t.Run("Participants", func(t *testing.T) { testParticipants(t, newRepo(t)) })
	t.Run("DeleteCascadesParticipants", func(t *testing.T) { testCascade(t, newRepo(t)) })
	t.Run("ConcurrentParticipate", func(t *testing.T) { testConcurrentParticipate(t, newRepo(t)) })
	t.Run("ConcurrentSignup", func(t *testing.T) { testConcurrentSignup(t, newRepo(t)) })
}

func createUser(t *testing.T, repo Repository, email string) *users.User {
	t.Helper()
	user, err := repo.Users().CreateUser(context.Background(), users.CreateUserParams{
		Email:    email,
		Password: "secret1",
		FullName: "Test " + email,
	})
	require.NoError(t, err)
	return user
}

func createEvent(t *testing.T, repo Repository, organizerID int64, title string) *events.Event {
	t.Helper()
	event, err := repo.Events().Create(context.Background(), events.EventCreateParams{
		Title:       title,
		Description: "d",
		Date:        time.Date(2025, 1, 1, 18, 30, 0, 0, time.UTC),
		Location:    "Paris",
		OrganizerID: organizerID,
	})
	require.NoError(t, err)
	return event
}

func testUsers(t *testing.T, repo Repository) {
	ctx := context.Background()
	store := repo.Users()

	alice := createUser(t, repo, "alice@example.com")
	require.NotZero(t, alice.ID)
	require.Equal(t, "alice@example.com", alice.Email)
	require.Equal(t, "secret1", alice.Password)

	byID, err := store.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, alice, byID)

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, alice.ID, byEmail.ID)

	_, err = store.GetUserByEmail(ctx, "ALICE@example.com")
	require.ErrorIs(t, err, users.ErrUserNotFound, "email lookup is case-sensitive")

	_, err = store.GetUserByID(ctx, alice.ID+1000)
	require.ErrorIs(t, err, users.ErrUserNotFound)

	_, err = store.CreateUser(ctx, users.CreateUserParams{Email: "alice@example.com", Password: "x", FullName: "Dup"})
	require.ErrorIs(t, err, users.ErrEmailTaken)
}

func testSessions(t *testing.T, repo Repository) {
	ctx := context.Background()
	store := repo.Users()
	alice := createUser(t, repo, "alice@example.com")

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(7 * 24 * time.Hour)

	live, err := store.CreateSession(ctx, users.CreateSessionParams{Token: "live-token", UserID: alice.ID, ExpiresAt: expires})
	require.NoError(t, err)
	require.NotZero(t, live.ID)
	require.True(t, expires.Equal(live.ExpiresAt))

	_, err = store.CreateSession(ctx, users.CreateSessionParams{Token: "second", UserID: alice.ID, ExpiresAt: expires})
	require.NoError(t, err, "a user may hold several sessions")
	_, err = store.CreateSession(ctx, users.CreateSessionParams{Token: "stale", UserID: alice.ID, ExpiresAt: now.Add(-time.Hour)})
	require.NoError(t, err)

	got, err := store.GetSessionByToken(ctx, "live-token")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.UserID)
	require.True(t, expires.Equal(got.ExpiresAt), "expiresAt round-trips: got %s", got.ExpiresAt)

	_, err = store.GetSessionByToken(ctx, "missing")
	require.ErrorIs(t, err, users.ErrSessionNotFound)

	deleted, err := store.DeleteSessionsByToken(ctx, "live-token")
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)
	_, err = store.GetSessionByToken(ctx, "live-token")
	require.ErrorIs(t, err, users.ErrSessionNotFound)

	deleted, err = store.DeleteSessionsByToken(ctx, "live-token")
	require.NoError(t, err)
	require.Zero(t, deleted)

	purged, err := store.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), purged)
	_, err = store.GetSessionByToken(ctx, "second")
	require.NoError(t, err)
}

func testEvents(t *testing.T, repo Repository) {
	ctx := context.Background()
	store := repo.Events()

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	alice := createUser(t, repo, "alice@example.com")
	first := createEvent(t, repo, alice.ID, "First")
	second := createEvent(t, repo, alice.ID, "Second")
	require.Greater(t, second.ID, first.ID)
	require.Equal(t, alice.ID, first.OrganizerID)
	require.True(t, time.Date(2025, 1, 1, 18, 30, 0, 0, time.UTC).Equal(first.Date))

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "First", list[0].Title)
	require.Equal(t, "Second", list[1].Title)

	got, err := store.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.Title, got.Title)
	require.Equal(t, "Paris", got.Location)
	require.True(t, first.Date.Equal(got.Date))

	_, err = store.GetByID(ctx, second.ID+1000)
	require.ErrorIs(t, err, events.ErrNotFound)

	require.NoError(t, store.Delete(ctx, first.ID))
	require.ErrorIs(t, store.Delete(ctx, first.ID), events.ErrNotFound)
	_, err = store.GetByID(ctx, first.ID)
	require.ErrorIs(t, err, events.ErrNotFound)
}

func testParticipants(t *testing.T, repo Repository) {
	ctx := context.Background()
	store := repo.Events()

	alice := createUser(t, repo, "alice@example.com")
	bob := createUser(t, repo, "bob@example.com")
	event := createEvent(t, repo, alice.ID, "Meetup")

	list, err := store.ListParticipants(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)

	p, err := store.CreateParticipant(ctx, bob.ID, event.ID)
	require.NoError(t, err)
	require.Equal(t, bob.ID, p.UserID)
	require.Equal(t, event.ID, p.EventID)

	_, err = store.CreateParticipant(ctx, bob.ID, event.ID)
	require.ErrorIs(t, err, events.ErrAlreadyParticipating)

	got, err := store.GetParticipant(ctx, bob.ID, event.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	_, err = store.GetParticipant(ctx, alice.ID, event.ID)
	require.ErrorIs(t, err, events.ErrNotParticipating)

	_, err = store.CreateParticipant(ctx, alice.ID, event.ID+1000)
	require.ErrorIs(t, err, events.ErrNotFound)

	list, err = store.ListParticipants(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.DeleteParticipant(ctx, bob.ID, event.ID))
	require.ErrorIs(t, store.DeleteParticipant(ctx, bob.ID, event.ID), events.ErrNotParticipating)
}

func testCascade(t *testing.T, repo Repository) {
	ctx := context.Background()
	store := repo.Events()

	alice := createUser(t, repo, "alice@example.com")
	bob := createUser(t, repo, "bob@example.com")
	event := createEvent(t, repo, alice.ID, "Meetup")
	other := createEvent(t, repo, alice.ID, "Other")

	_, err := store.CreateParticipant(ctx, bob.ID, event.ID)
	require.NoError(t, err)
	_, err = store.CreateParticipant(ctx, bob.ID, other.ID)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, event.ID))

	list, err := store.ListParticipants(ctx, event.ID)
	require.NoError(t, err)
	require.Empty(t, list)
	_, err = store.GetParticipant(ctx, bob.ID, event.ID)
	require.ErrorIs(t, err, events.ErrNotParticipating)

	list, err = store.ListParticipants(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

const racers = 8

func testConcurrentParticipate(t *testing.T, repo Repository) {
	ctx := context.Background()
	alice := createUser(t, repo, "alice@example.com")
	bob := createUser(t, repo, "bob@example.com")
	event := createEvent(t, repo, alice.ID, "Meetup")

	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Events().CreateParticipant(ctx, bob.ID, event.ID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, events.ErrAlreadyParticipating)
	}
	require.Equal(t, 1, successes)

	list, err := repo.Events().ListParticipants(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func testConcurrentSignup(t *testing.T, repo Repository) {
	ctx := context.Background()

	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Users().CreateUser(ctx, users.CreateUserParams{
				Email:    "race@example.com",
				Password: "secret1",
				FullName: fmt.Sprintf("Racer %d", i),
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, users.ErrEmailTaken)
	}
	require.Equal(t, 1, successes)
}
