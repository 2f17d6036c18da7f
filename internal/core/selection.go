package core

// selection.go applies batches of selection changes.
//
// A batch runs in one transaction. Requests are applied in order and the
// first failure rolls back the whole batch; the error carries the 0-based
// position of the failing request.
//
// For each request:
//   - selected=false clears method and link. Expected goals are normalized
//     when supplied and kept otherwise.
//   - selected=true requires an existing method, checked before expected
//     goals and link. Both are normalized when supplied and kept otherwise.
//
// A supplied expected goals value must be a number, null and blank included.
// An explicit null or blank link clears the link.

import (
	"context"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// MaxLinkLength is the longest link a game may carry.
const MaxLinkLength = 2048

var (
	decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	schemePattern  = regexp.MustCompile(`(?i)^[a-z][a-z0-9+\-.]*://`)
)

// SelectionUpdater applies selection batches.
type SelectionUpdater struct {
	repo Repository
}

// NewSelectionUpdater creates a SelectionUpdater.
func NewSelectionUpdater(repo Repository) *SelectionUpdater {
	return &SelectionUpdater{repo: repo}
}

// Apply runs the batch and returns the number of games updated. An empty
// batch returns 0 without touching storage.
func (u *SelectionUpdater) Apply(ctx context.Context, reqs []SelectionRequest) (int, error) {
	if len(reqs) == 0 {
		return 0, nil
	}

	updated := 0
	err := u.repo.WithinTx(ctx, func(tx Tx) error {
		for i, req := range reqs {
			if err := applySelection(ctx, tx, req); err != nil {
				return atIndex(err, i)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, AsError(err, "Erro ao atualizar os jogos.")
	}
	return updated, nil
}

func applySelection(ctx context.Context, tx Tx, req SelectionRequest) error {
	if req.ID <= 0 {
		return validationError(CodeRecordNotFound, "ID de jogo inválido.")
	}

	game, err := tx.GetGame(ctx, req.ID)
	if err != nil {
		return storageError("Não foi possível carregar o jogo.", err)
	}
	if game == nil {
		return validationError(CodeRecordNotFound, "Jogo informado não foi encontrado.")
	}

	sel := Selection{Selected: req.Selected}

	if req.Selected {
		if req.MethodID == nil {
			return validationError(CodeMissingMethod, "Selecione um método para os jogos escolhidos.")
		}
		if *req.MethodID <= 0 {
			return validationError(CodeUnknownMethod, "Método selecionado é inválido.")
		}
		method, err := tx.GetMethod(ctx, *req.MethodID)
		if err != nil {
			return storageError("Não foi possível carregar o método.", err)
		}
		if method == nil {
			return validationError(CodeUnknownMethod, "Método selecionado não existe.")
		}

		goals, err := resolveGoals(req.ExpectedGoals, game.ExpectedGoals)
		if err != nil {
			return err
		}

		link, err := resolveLink(req.Link, game.Link)
		if err != nil {
			return err
		}

		sel.ExpectedGoals = goals
		sel.MethodID = &method.ID
		sel.MethodName = &method.Name
		sel.Link = link
	} else {
		goals, err := resolveGoals(req.ExpectedGoals, game.ExpectedGoals)
		if err != nil {
			return err
		}
		sel.ExpectedGoals = goals
	}

	if err := tx.SaveSelection(ctx, req.ID, sel); err != nil {
		return storageError("Erro ao salvar os dados no banco.", err)
	}
	return nil
}

// resolveGoals keeps current when no value was sent. A sent value, null
// included, must be a number.
func resolveGoals(in Optional, current *float64) (*float64, error) {
	if !in.Present {
		return current, nil
	}
	if in.Null {
		return nil, invalidGoals()
	}
	return NormalizeGoals(in.Value)
}

func resolveLink(in Optional, current *string) (*string, error) {
	if !in.Present {
		return current, nil
	}
	if in.Null {
		return nil, nil
	}
	return NormalizeLink(in.Value)
}

// NormalizeGoals parses an expected-goals value. Spaces and apostrophes are
// dropped and a comma is read as the decimal point. Blank input is invalid.
func NormalizeGoals(s string) (*float64, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\'' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || !decimalPattern.MatchString(s) {
		return nil, invalidGoals()
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, invalidGoals()
	}
	return &v, nil
}

func invalidGoals() *Error {
	return validationError(CodeInvalidGoalsValue, "Valor de gols esperados inválido.")
}

// NormalizeLink validates a game link. Input without a scheme is retried
// with https://. Blank input returns nil.
func NormalizeLink(s string) (*string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if !schemePattern.MatchString(s) {
		if _, ok := parseWebURL("https://" + s); ok {
			s = "https://" + s
		}
	}

	if _, ok := parseWebURL(s); !ok {
		return nil, validationError(CodeInvalidLink, "Informe um link válido (http ou https).")
	}
	if len(s) > MaxLinkLength {
		return nil, validationError(CodeInvalidLink, "O link informado é muito longo.")
	}
	return &s, nil
}

// parseWebURL accepts absolute http and https URLs with a host.
func parseWebURL(s string) (*url.URL, bool) {
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	return u, true
}
