package models

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFollowers(t *testing.T) {
	ctx := context.Background()

	t.Run("Add is idempotent", func(t *testing.T) {
		require := require.New(t)
		followers := NewFollowers(setupTestDB(t))

		added, err := followers.Add(ctx, MockFollower("alice", "remote.example"))
		require.NoError(err)
		require.True(added)

		added, err = followers.Add(ctx, MockFollower("alice", "remote.example"))
		require.NoError(err)
		require.False(added)

		all, err := followers.List(ctx)
		require.NoError(err)
		require.Len(all, 1)
		require.Equal("https://remote.example/users/alice", all[0].ID)
		require.False(all[0].FollowedAt.IsZero())
	})

	t.Run("Add requires an id and inbox", func(t *testing.T) {
		require := require.New(t)
		followers := NewFollowers(setupTestDB(t))

		_, err := followers.Add(ctx, &Follower{Inbox: "https://remote.example/inbox"})
		require.Error(err)
		_, err = followers.Add(ctx, &Follower{ID: "https://remote.example/users/alice"})
		require.Error(err)
	})

	t.Run("Remove of a non member is a no-op", func(t *testing.T) {
		require := require.New(t)
		followers := NewFollowers(setupTestDB(t))

		_, err := followers.Add(ctx, MockFollower("alice", "remote.example"))
		require.NoError(err)

		removed, err := followers.Remove(ctx, "https://remote.example/users/bob")
		require.NoError(err)
		require.False(removed)

		count, err := followers.Count(ctx)
		require.NoError(err)
		require.Equal(1, count)

		removed, err = followers.Remove(ctx, "https://remote.example/users/alice")
		require.NoError(err)
		require.True(removed)

		all, err := followers.List(ctx)
		require.NoError(err)
		require.Empty(all)
	})

	t.Run("Find", func(t *testing.T) {
		require := require.New(t)
		followers := NewFollowers(setupTestDB(t))

		_, err := followers.Add(ctx, MockFollower("alice", "remote.example", WithSharedInbox("https://remote.example/inbox")))
		require.NoError(err)

		f, err := followers.Find(ctx, "https://remote.example/users/alice")
		require.NoError(err)
		require.Equal("https://remote.example/inbox", f.EffectiveInbox())

		_, err = followers.Find(ctx, "https://remote.example/users/bob")
		require.Error(err)
	})

	t.Run("Page", func(t *testing.T) {
		require := require.New(t)
		followers := NewFollowers(setupTestDB(t))
		for i := 0; i < 5; i++ {
			_, err := followers.Add(ctx, MockFollower(fmt.Sprintf("user%d", i), "remote.example"))
			require.NoError(err)
		}

		page, err := followers.Page(ctx, 0, 2)
		require.NoError(err)
		require.Len(page, 2)

		page, err = followers.Page(ctx, 4, 2)
		require.NoError(err)
		require.Len(page, 1)

		page, err = followers.Page(ctx, 10, 2)
		require.NoError(err)
		require.Empty(page)
	})

	t.Run("concurrent follows and unfollows do not lose updates", func(t *testing.T) {
		require := require.New(t)
		followers := NewFollowers(setupTestDB(t))
		for i := 0; i < 10; i++ {
			_, err := followers.Add(ctx, MockFollower(fmt.Sprintf("leaver%d", i), "remote.example"))
			require.NoError(err)
		}

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				_, err := followers.Add(ctx, MockFollower(fmt.Sprintf("joiner%d", i), "remote.example"))
				errs <- err
			}(i)
			go func(i int) {
				defer wg.Done()
				_, err := followers.Remove(ctx, fmt.Sprintf("https://remote.example/users/leaver%d", i))
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(err)
		}

		all, err := followers.List(ctx)
		require.NoError(err)
		require.Len(all, 10)
		for _, f := range all {
			require.Contains(f.ID, "joiner")
		}
	})
}

func TestEffectiveInbox(t *testing.T) {
	require := require.New(t)
	require.Equal("https://remote.example/users/alice/inbox", MockFollower("alice", "remote.example").EffectiveInbox())
	require.Equal("https://remote.example/inbox", MockFollower("alice", "remote.example", WithSharedInbox("https://remote.example/inbox")).EffectiveInbox())
}
