package core

// validation.go checks a parsed CSV before anything is written and resolves
// each row into the typed columns of a game.
//
// Validation happens at two levels:
//  1. Header validation: no duplicate keys, required keys present
//  2. Row validation: at least one data row
//
// Field resolution then picks match date, time, league and teams from an
// ordered list of candidate keys per field; the first non-empty value wins.

import (
	"fmt"
	"strings"
)

// Candidate keys per resolved field, in priority order.
var (
	dateKeys   = []string{"match_date", "data", "data_jogo", "date"}
	timeKeys   = []string{"horario", "hora", "time", "horario_jogo"}
	leagueKeys = []string{"liga", "competicao", "league", "campeonato"}
	homeKeys   = []string{"casa", "time_casa", "mandante", "home", "equipe_casa", "team_home"}
	awayKeys   = []string{"visitante", "time_visitante", "away", "equipe_visitante", "team_away"}
)

// ValidateHeader rejects duplicate normalized keys, then a supplied header
// that lacks required keys.
func ValidateHeader(h Header) error {
	if dups := duplicateLabels(h); len(dups) > 0 {
		return validationError(CodeDuplicateColumns, fmt.Sprintf(
			"Existem colunas duplicadas após normalização (%s). Renomeie o cabeçalho e tente novamente.",
			strings.Join(dups, ", ")))
	}

	if h.Supplied && len(h.Missing) > 0 {
		labels := make([]string, len(h.Missing))
		for i, k := range h.Missing {
			labels[i] = requiredLabels[k]
		}
		return validationError(CodeMissingColumns, fmt.Sprintf(
			"As colunas obrigatórias \"%s\" não foram encontradas.",
			strings.Join(labels, "\", \"")))
	}

	return nil
}

// duplicateLabels lists every label whose key is shared with another column.
func duplicateLabels(h Header) []string {
	counts := make(map[string]int, len(h.Keys))
	for _, k := range h.Keys {
		counts[k]++
	}

	var dups []string
	for i, k := range h.Keys {
		if counts[k] <= 1 {
			continue
		}
		label := h.Labels[i]
		if label == "" {
			label = fmt.Sprintf("Column %d", i+1)
		}
		dups = append(dups, label)
	}
	return dups
}

// ValidateRows rejects input with no data rows.
func ValidateRows(rows []Row) error {
	if len(rows) == 0 {
		return validationError(CodeNoValidRows, "Nenhuma linha válida encontrada no conteúdo enviado.")
	}
	return nil
}

// ResolveGame extracts the persisted columns of row. The row's own date
// wins when it parses; otherwise defaultMatchDate (already normalized, or
// "") is used. With neither, it fails with MissingMatchDate.
func ResolveGame(row Row, defaultMatchDate string) (GameInput, error) {
	g := GameInput{
		MatchTime: firstValue(row.Normalized, timeKeys),
		League:    firstValue(row.Normalized, leagueKeys),
		HomeTeam:  firstValue(row.Normalized, homeKeys),
		AwayTeam:  firstValue(row.Normalized, awayKeys),
		Raw:       row.Raw,
	}

	if d := firstValue(row.Normalized, dateKeys); d != nil {
		if iso, err := NormalizeDate(*d); err == nil {
			g.MatchDate = &iso
		}
	}
	if g.MatchDate == nil && defaultMatchDate != "" {
		d := defaultMatchDate
		g.MatchDate = &d
	}
	if g.MatchDate == nil {
		e := validationError(CodeMissingMatchDate, "Selecione a data dos jogos antes de enviar.")
		e.Line = row.Line
		return GameInput{}, e
	}

	return g, nil
}

// ResolveGames resolves every row, stopping at the first failure.
func ResolveGames(rows []Row, defaultMatchDate string) ([]GameInput, error) {
	games := make([]GameInput, 0, len(rows))
	for _, r := range rows {
		g, err := ResolveGame(r, defaultMatchDate)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}

func firstValue(f *Fields, keys []string) *string {
	for _, k := range keys {
		if v, ok := f.Get(k); ok && v != "" {
			return &v
		}
	}
	return nil
}
