package core

import (
	"context"
	"log/slog"
)

// GameStore owns the persisted game set and the header labels that describe
// it.
type GameStore struct {
	repo    Repository
	headers HeaderStore
	logger  *slog.Logger
}

// NewGameStore creates a GameStore. A nil logger uses slog.Default.
func NewGameStore(repo Repository, headers HeaderStore, logger *slog.Logger) *GameStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameStore{repo: repo, headers: headers, logger: logger}
}

// ReplaceAll swaps the whole game set for rows. Every row is resolved before
// the transaction opens, so a bad row leaves the stored set untouched.
//
// The header labels are saved after commit. If that fails the new games are
// already stored: the committed count is returned together with a storage
// error.
func (s *GameStore) ReplaceAll(ctx context.Context, headerLabels []string, rows []Row, defaultMatchDate string) (int, error) {
	games, err := ResolveGames(rows, defaultMatchDate)
	if err != nil {
		return 0, err
	}

	inserted, err := s.repo.ReplaceGames(ctx, games)
	if err != nil {
		return 0, AsError(err, "Erro ao salvar os dados no banco.")
	}

	if err := s.headers.SaveHeaders(ctx, headerLabels); err != nil {
		s.logger.Warn("games replaced but headers not saved",
			"inserted", inserted,
			"error", err,
		)
		return inserted, storageError("Falha ao gravar os cabeçalhos.", err)
	}

	return inserted, nil
}

// List returns the stored games, optionally only the selected ones.
func (s *GameStore) List(ctx context.Context, selectedOnly bool) ([]GameRecord, error) {
	games, err := s.repo.ListGames(ctx, selectedOnly)
	if err != nil {
		return nil, AsError(err, "Erro ao abrir o banco de dados.")
	}
	if games == nil {
		games = []GameRecord{}
	}
	return games, nil
}

// GetHeaderLabels returns the labels saved by the last ingestion.
func (s *GameStore) GetHeaderLabels(ctx context.Context) []string {
	labels := s.headers.LoadHeaders(ctx)
	if labels == nil {
		return []string{}
	}
	return labels
}
