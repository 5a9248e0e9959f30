package repository

import (
	"context"
	"testing"

	"warden/models"
	"warden/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConnectionRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewServerConnectionRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		conn := testutil.CreateTestServerConnection("main")
		err := repo.Create(ctx, conn)
		require.NoError(t, err)

		assert.NotZero(t, conn.ID)
		assert.False(t, conn.CreatedAt.IsZero())
		assert.False(t, conn.UpdatedAt.IsZero())
	})

	t.Run("duplicate nickname rejected", func(t *testing.T) {
		conn := testutil.CreateTestServerConnection("main")
		err := repo.Create(ctx, conn)
		assert.ErrorIs(t, err, models.ErrDuplicateNickname)
	})
}

func TestServerConnectionRepository_GetByNickname(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewServerConnectionRepository(testDB.DB)
	ctx := context.Background()

	original := testutil.CreateTestServerConnection("main")
	require.NoError(t, repo.Create(ctx, original))

	t.Run("found", func(t *testing.T) {
		conn, err := repo.GetByNickname(ctx, "main")
		require.NoError(t, err)
		require.NotNil(t, conn)

		assert.Equal(t, original.ID, conn.ID)
		assert.Equal(t, "203.0.113.10:27015", conn.Address)
		assert.Equal(t, "test_password", conn.Password)
		assert.Equal(t, models.ConnectionStatusDisconnected, conn.Status)
	})

	t.Run("not found", func(t *testing.T) {
		conn, err := repo.GetByNickname(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, conn)
	})
}

func TestServerConnectionRepository_UpdateStatus(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewServerConnectionRepository(testDB.DB)
	ctx := context.Background()

	conn := testutil.CreateTestServerConnection("main")
	require.NoError(t, repo.Create(ctx, conn))

	t.Run("status transition persists", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, "main", models.ConnectionStatusConnected)
		require.NoError(t, err)

		loaded, err := repo.GetByNickname(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, models.ConnectionStatusConnected, loaded.Status)
		assert.True(t, loaded.UpdatedAt.After(conn.UpdatedAt) || loaded.UpdatedAt.Equal(conn.UpdatedAt))
	})

	t.Run("unknown nickname", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, "ghost", models.ConnectionStatusConnected)
		assert.ErrorIs(t, err, models.ErrConnectionNotFound)
	})
}

func TestServerConnectionRepository_Delete(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewServerConnectionRepository(testDB.DB)
	ctx := context.Background()

	conn := testutil.CreateTestServerConnection("main")
	require.NoError(t, repo.Create(ctx, conn))

	t.Run("existing record", func(t *testing.T) {
		found, err := repo.Delete(ctx, "main")
		require.NoError(t, err)
		assert.True(t, found)

		loaded, err := repo.GetByNickname(ctx, "main")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("missing record", func(t *testing.T) {
		found, err := repo.Delete(ctx, "main")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestServerConnectionRepository_GetAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewServerConnectionRepository(testDB.DB)
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		conns, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, conns)
	})

	t.Run("ordered by nickname", func(t *testing.T) {
		for _, nickname := range []string{"charlie", "alpha", "bravo"} {
			require.NoError(t, repo.Create(ctx, testutil.CreateTestServerConnection(nickname)))
		}

		conns, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, conns, 3)

		assert.Equal(t, "alpha", conns[0].Nickname)
		assert.Equal(t, "bravo", conns[1].Nickname)
		assert.Equal(t, "charlie", conns[2].Nickname)
	})
}
