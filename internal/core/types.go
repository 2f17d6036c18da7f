package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// GameRecord is a persisted game together with its annotations.
type GameRecord struct {
	ID            int64    `json:"id"`
	MatchDate     *string  `json:"match_date"`
	MatchTime     *string  `json:"match_time"`
	League        *string  `json:"league"`
	HomeTeam      *string  `json:"home_team"`
	AwayTeam      *string  `json:"away_team"`
	Selected      bool     `json:"selected"`
	ExpectedGoals *float64 `json:"expected_goals"`
	MethodName    *string  `json:"method"`
	MethodID      *int64   `json:"method_id"`
	MethodColor   *string  `json:"method_color"`
	Link          *string  `json:"link"`
	Raw           *Fields  `json:"raw"`
}

// GameInput is a resolved CSV row, ready to insert.
type GameInput struct {
	MatchDate *string
	MatchTime *string
	League    *string
	HomeTeam  *string
	AwayTeam  *string
	Raw       *Fields
}

// Method is a named classification a selected game is tagged with.
type Method struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Selection is the annotation state written for one game.
type Selection struct {
	Selected      bool
	ExpectedGoals *float64
	MethodID      *int64
	MethodName    *string
	Link          *string
}

// Repository persists games and methods.
type Repository interface {
	// ReplaceGames deletes every game and inserts games in one transaction,
	// returning the number inserted.
	ReplaceGames(ctx context.Context, games []GameInput) (int, error)
	// ListGames returns games ordered by match date, match time and id,
	// nulls first.
	ListGames(ctx context.Context, selectedOnly bool) ([]GameRecord, error)
	// WithinTx runs fn in a transaction, committing only if fn returns nil.
	WithinTx(ctx context.Context, fn func(Tx) error) error

	CreateMethod(ctx context.Context, name, color string) (Method, error)
	ListMethods(ctx context.Context) ([]Method, error)
	// GetMethod returns nil, nil when no method has the id.
	GetMethod(ctx context.Context, id int64) (*Method, error)

	Ping(ctx context.Context) error
	Close() error
}

// Tx is the set of reads and writes available inside WithinTx.
type Tx interface {
	// GetGame returns nil, nil when no game has the id.
	GetGame(ctx context.Context, id int64) (*GameRecord, error)
	// GetMethod returns nil, nil when no method has the id.
	GetMethod(ctx context.Context, id int64) (*Method, error)
	SaveSelection(ctx context.Context, id int64, s Selection) error
}

// HeaderStore keeps the display labels of the last ingestion.
type HeaderStore interface {
	SaveHeaders(ctx context.Context, labels []string) error
	// LoadHeaders returns an empty slice when nothing usable is stored.
	LoadHeaders(ctx context.Context) []string
}

// Optional is a request value that may be absent, explicitly null, or set.
// The zero value is absent.
type Optional struct {
	Present bool
	Null    bool
	Value   string // JSON numbers keep their literal text
}

// Some returns a present, non-null Optional.
func Some(v string) Optional {
	return Optional{Present: true, Value: v}
}

// Null returns a present, null Optional.
func Null() Optional {
	return Optional{Present: true, Null: true}
}

// UnmarshalJSON accepts null, a string or a number.
func (o *Optional) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	o.Present = true

	if bytes.Equal(data, []byte("null")) {
		o.Null = true
		o.Value = ""
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch t := v.(type) {
	case string:
		o.Value = t
	case json.Number:
		o.Value = t.String()
	default:
		return fmt.Errorf("optional: unsupported JSON value %s", data)
	}
	return nil
}

// SelectionRequest is one entry of a selection batch.
type SelectionRequest struct {
	ID            int64
	Selected      bool
	MethodID      *int64
	ExpectedGoals Optional
	Link          Optional
}

// IngestResult reports a successful ingestion.
type IngestResult struct {
	Inserted int       `json:"inserted"`
	BatchID  uuid.UUID `json:"batchId"`
}

// GameList is the current header set and games.
type GameList struct {
	Headers []string     `json:"headers"`
	Games   []GameRecord `json:"games"`
}
