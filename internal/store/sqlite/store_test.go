package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/matchboard/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "games.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strp(s string) *string { return &s }

func gameInput(home string, kv ...string) core.GameInput {
	raw := core.NewFields(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		raw.Set(kv[i], kv[i+1])
	}
	return core.GameInput{
		MatchDate: strp("2024-05-10"),
		HomeTeam:  strp(home),
		Raw:       raw,
	}
}

func TestOpen_CreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.sqlite")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(ctx))
}

func TestOpen_AddsColumnsToOlderDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.sqlite")
	ctx := context.Background()

	// A games table from before method_id and link existed.
	db, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		CREATE TABLE games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_date TEXT, match_time TEXT, league TEXT,
			home_team TEXT, away_team TEXT,
			raw_data TEXT NOT NULL,
			selected INTEGER NOT NULL DEFAULT 0,
			expected_goals REAL,
			method TEXT
		);
		INSERT INTO games (match_date, home_team, raw_data, selected, method)
		VALUES ('2024-01-01', 'Antigo', '{"Casa":"Antigo"}', 1, 'Legado');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	games, err := s.ListGames(ctx, false)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Antigo", *games[0].HomeTeam)
	assert.Equal(t, "Legado", *games[0].MethodName, "legacy method name is kept")
	assert.Nil(t, games[0].MethodID)
	assert.Nil(t, games[0].Link)
}

func TestReplaceGames(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.ReplaceGames(ctx, []core.GameInput{
		gameInput("A", "Visitante", "B", "Casa", "A"),
		gameInput("C", "Casa", "C"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	games, err := s.ListGames(ctx, false)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, []string{"Visitante", "Casa"}, games[0].Raw.Keys(), "raw key order survives storage")
	assert.Nil(t, games[0].League)

	n, err = s.ReplaceGames(ctx, []core.GameInput{gameInput("D")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	games, err = s.ListGames(ctx, false)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "D", *games[0].HomeTeam)
}

func TestReplaceGames_RollsBackOnFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceGames(ctx, []core.GameInput{gameInput("Keep")})
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.ReplaceGames(canceled, []core.GameInput{gameInput("Lost")})
	require.Error(t, err)

	games, err := s.ListGames(ctx, false)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Keep", *games[0].HomeTeam)
}

func TestWithinTx_CommitAndRollback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceGames(ctx, []core.GameInput{gameInput("A")})
	require.NoError(t, err)
	games, err := s.ListGames(ctx, false)
	require.NoError(t, err)
	id := games[0].ID

	m, err := s.CreateMethod(ctx, "Over", "#FF0000")
	require.NoError(t, err)

	goals := 2.5
	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(tx core.Tx) error {
		require.NoError(t, tx.SaveSelection(ctx, id, core.Selection{
			Selected: true, ExpectedGoals: &goals, MethodID: &m.ID, MethodName: &m.Name, Link: strp("https://x.com"),
		}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	games, err = s.ListGames(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, games, "rolled back selection is not visible")

	err = s.WithinTx(ctx, func(tx core.Tx) error {
		g, err := tx.GetGame(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, g)

		method, err := tx.GetMethod(ctx, m.ID)
		require.NoError(t, err)
		require.NotNil(t, method)

		return tx.SaveSelection(ctx, id, core.Selection{
			Selected: true, ExpectedGoals: &goals, MethodID: &method.ID, MethodName: &method.Name,
		})
	})
	require.NoError(t, err)

	games, err = s.ListGames(ctx, true)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 2.5, *games[0].ExpectedGoals)
	assert.Equal(t, "#FF0000", *games[0].MethodColor)
}

func TestTx_MissingRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx core.Tx) error {
		g, err := tx.GetGame(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, g)

		m, err := tx.GetMethod(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, m)

		return tx.SaveSelection(ctx, 404, core.Selection{})
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateMethod_Duplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateMethod(ctx, "Over", "#FF0000")
	require.NoError(t, err)

	_, err = s.CreateMethod(ctx, "Over", "#00FF00")
	assert.ErrorIs(t, err, core.ErrDuplicateName)
}

func TestListMethods(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	methods, err := s.ListMethods(ctx)
	require.NoError(t, err)
	assert.Empty(t, methods)

	for _, name := range []string{"b", "C", "a"} {
		_, err := s.CreateMethod(ctx, name, "#000000")
		require.NoError(t, err)
	}

	methods, err = s.ListMethods(ctx)
	require.NoError(t, err)
	require.Len(t, methods, 3)
	assert.Equal(t, "a", methods[0].Name)
	assert.Equal(t, "b", methods[1].Name)
	assert.Equal(t, "C", methods[2].Name)
}

func TestDecodeRaw(t *testing.T) {
	assert.Equal(t, 0, decodeRaw("").Len())
	assert.Equal(t, 0, decodeRaw("not json").Len())
	assert.Equal(t, []string{"b", "a"}, decodeRaw(`{"b":"1","a":"2"}`).Keys())
}
