package core

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/matchboard/internal/logging"
	"github.com/JonMunkholm/matchboard/internal/metrics"
	"github.com/google/uuid"
)

// Service is the entry point for ingestion, listing, selection and method
// registry operations.
type Service struct {
	repo      Repository
	games     *GameStore
	selection *SelectionUpdater
}

// NewService creates a Service over repo and headers.
func NewService(repo Repository, headers HeaderStore) *Service {
	return &Service{
		repo:      repo,
		games:     NewGameStore(repo, headers, nil),
		selection: NewSelectionUpdater(repo),
	}
}

// Ingest replaces the stored games with the rows of csvText. matchDateHint is
// the default match date for rows that carry none; blank means no default.
func (s *Service) Ingest(ctx context.Context, csvText, matchDateHint string) (IngestResult, error) {
	start := time.Now()
	batchID := uuid.New()
	logger := logging.FromContext(ctx).With("batch_id", batchID.String())
	ctx = logging.NewContext(ctx, logger)

	inserted, err := s.ingest(ctx, logger, csvText, matchDateHint)
	if err != nil {
		e := AsError(err, "Erro ao salvar os dados no banco.")
		metrics.RecordIngestion(metrics.StatusError, inserted, time.Since(start).Seconds())
		metrics.RecordError("ingest", string(e.Code))
		logFailure(logger, "ingestion failed", e)
		return IngestResult{Inserted: inserted, BatchID: batchID}, e
	}

	metrics.RecordIngestion(metrics.StatusSuccess, inserted, time.Since(start).Seconds())
	logger.Info("ingestion complete",
		"inserted", inserted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return IngestResult{Inserted: inserted, BatchID: batchID}, nil
}

func (s *Service) ingest(ctx context.Context, logger *slog.Logger, csvText, matchDateHint string) (int, error) {
	defaultDate, err := NormalizeMatchDateHint(matchDateHint)
	if err != nil {
		return 0, err
	}

	if strings.TrimSpace(csvText) == "" {
		return 0, inputError(CodeEmptyInput, "Cole o conteúdo do CSV antes de enviar.")
	}

	parsed, err := ParseCSV(csvText)
	if err != nil {
		return 0, err
	}
	logger.Debug("csv parsed",
		"rows", len(parsed.Rows),
		"header_supplied", parsed.Header.Supplied,
	)

	inserted, err := s.games.ReplaceAll(ctx, parsed.Header.Labels, parsed.Rows, defaultDate)
	if err != nil && inserted > 0 {
		metrics.HeaderSaveFailures.Inc()
	}
	return inserted, err
}

// ListGames returns the header labels and the stored games.
func (s *Service) ListGames(ctx context.Context, selectedOnly bool) (GameList, error) {
	games, err := s.games.List(ctx, selectedOnly)
	if err != nil {
		metrics.RecordGameQuery(selectedOnly, metrics.StatusError)
		logFailure(logging.FromContext(ctx), "list games failed", AsError(err, ""))
		return GameList{}, err
	}

	metrics.RecordGameQuery(selectedOnly, metrics.StatusSuccess)
	return GameList{
		Headers: s.games.GetHeaderLabels(ctx),
		Games:   games,
	}, nil
}

// UpdateSelections applies a selection batch atomically.
func (s *Service) UpdateSelections(ctx context.Context, reqs []SelectionRequest) (int, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	updated, err := s.selection.Apply(ctx, reqs)
	if err != nil {
		e := AsError(err, "Erro ao atualizar os jogos.")
		metrics.RecordSelection(metrics.StatusError, 0, time.Since(start).Seconds())
		metrics.RecordError("update_selections", string(e.Code))
		logFailure(logger, "selection update failed", e, "batch_size", len(reqs))
		return 0, e
	}

	metrics.RecordSelection(metrics.StatusSuccess, updated, time.Since(start).Seconds())
	logger.Info("selection updated", "updated", updated)
	return updated, nil
}

// CreateMethod registers a method. Duplicate names fail with DuplicateName.
func (s *Service) CreateMethod(ctx context.Context, name, color string) (Method, error) {
	logger := logging.FromContext(ctx)

	m, err := s.createMethod(ctx, name, color)
	if err != nil {
		e := AsError(err, "Erro ao salvar o método.")
		metrics.RecordMethodOperation("create", metrics.StatusError)
		metrics.RecordError("create_method", string(e.Code))
		logFailure(logger, "create method failed", e)
		return Method{}, e
	}

	metrics.RecordMethodOperation("create", metrics.StatusSuccess)
	logger.Info("method created", "method_id", m.ID, "name", m.Name)
	return m, nil
}

func (s *Service) createMethod(ctx context.Context, name, color string) (Method, error) {
	name, err := NormalizeMethodName(name)
	if err != nil {
		return Method{}, err
	}
	color, err = NormalizeColor(color)
	if err != nil {
		return Method{}, err
	}

	m, err := s.repo.CreateMethod(ctx, name, color)
	if errors.Is(err, ErrDuplicateName) {
		return Method{}, duplicateNameError(err)
	}
	return m, err
}

// ListMethods returns all methods ordered by name, ignoring case.
func (s *Service) ListMethods(ctx context.Context) ([]Method, error) {
	methods, err := s.repo.ListMethods(ctx)
	if err != nil {
		e := AsError(err, "Erro ao abrir o banco de dados.")
		metrics.RecordMethodOperation("list", metrics.StatusError)
		logFailure(logging.FromContext(ctx), "list methods failed", e)
		return nil, e
	}

	metrics.RecordMethodOperation("list", metrics.StatusSuccess)
	if methods == nil {
		methods = []Method{}
	}
	return methods, nil
}

// GetMethod returns the method with id, or nil when there is none.
func (s *Service) GetMethod(ctx context.Context, id int64) (*Method, error) {
	m, err := s.repo.GetMethod(ctx, id)
	if err != nil {
		return nil, AsError(err, "Erro ao abrir o banco de dados.")
	}
	return m, nil
}

// Ping checks that storage is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// logFailure logs caller errors at warn and storage errors at error.
func logFailure(logger *slog.Logger, msg string, e *Error, args ...any) {
	args = append(args, "code", string(e.Code), "error", e.Error())
	if e.Err != nil {
		args = append(args, "detail", e.Detail())
	}
	if e.Kind == KindStorage {
		args = append(args, "user_message", FormatUserError(e))
		logger.Error(msg, args...)
		return
	}
	logger.Warn(msg, args...)
}
