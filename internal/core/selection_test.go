package core

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// ============================================================================
// NormalizeGoals / NormalizeLink Tests
// ============================================================================

func TestNormalizeGoals(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{input: "2.5", want: 2.5},
		{input: "2,5", want: 2.5},
		{input: " 3 ", want: 3},
		{input: "1'5", want: 15},
		{input: "0", want: 0},
		{input: ".75", want: 0.75},
		{input: "2.", want: 2},
		{input: "+1.5", want: 1.5},
		{input: "1e1", want: 10},
		{input: "", wantErr: true},
		{input: "   ", wantErr: true},
		{input: "'", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "2,5,1", wantErr: true},
		{input: "1e400", wantErr: true},
		{input: "NaN", wantErr: true},
		{input: "Inf", wantErr: true},
		{input: "0x10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeGoals(tt.input)
			if tt.wantErr {
				if !HasCode(err, CodeInvalidGoalsValue) {
					t.Errorf("NormalizeGoals(%q) error = %v, want %s", tt.input, err, CodeInvalidGoalsValue)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeGoals(%q) error = %v", tt.input, err)
			}
			if got == nil || *got != tt.want {
				t.Errorf("NormalizeGoals(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLink(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "https://example.com/jogo/1", want: "https://example.com/jogo/1"},
		{input: "http://example.com", want: "http://example.com"},
		{input: "HTTPS://Example.com", want: "HTTPS://Example.com"},
		{input: "example.com/jogo", want: "https://example.com/jogo"},
		{input: "  www.site.com.br  ", want: "https://www.site.com.br"},
		{input: "ftp://example.com", wantErr: true},
		{input: "javascript:alert(1)", wantErr: true},
		{input: "https://", wantErr: true},
		{input: "exa mple.com", wantErr: true},
		{input: "https://" + strings.Repeat("a", MaxLinkLength), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeLink(tt.input)
			if tt.wantErr {
				if !HasCode(err, CodeInvalidLink) {
					t.Errorf("NormalizeLink(%q) error = %v, want %s", tt.input, err, CodeInvalidLink)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeLink(%q) error = %v", tt.input, err)
			}
			if got == nil || *got != tt.want {
				t.Errorf("NormalizeLink(%q) = %v, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLink_Blank(t *testing.T) {
	got, err := NormalizeLink("   ")
	if err != nil || got != nil {
		t.Errorf("NormalizeLink(blank) = %v, %v; want nil, nil", got, err)
	}
}

func TestNormalizeLink_TooLongMessage(t *testing.T) {
	_, err := NormalizeLink("https://example.com/" + strings.Repeat("x", MaxLinkLength))
	if err == nil || err.Error() != "O link informado é muito longo." {
		t.Errorf("error = %v", err)
	}
}

// ============================================================================
// SelectionUpdater Tests
// ============================================================================

// memRepo is an in-memory Repository for selection tests. WithinTx works on
// a copy and only publishes it when fn succeeds.
type memRepo struct {
	games   map[int64]GameRecord
	methods map[int64]Method
	txCount int
	failErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		games:   map[int64]GameRecord{},
		methods: map[int64]Method{},
	}
}

func (r *memRepo) ReplaceGames(ctx context.Context, games []GameInput) (int, error) {
	return 0, errors.New("not implemented")
}

func (r *memRepo) ListGames(ctx context.Context, selectedOnly bool) ([]GameRecord, error) {
	return nil, errors.New("not implemented")
}

func (r *memRepo) CreateMethod(ctx context.Context, name, color string) (Method, error) {
	return Method{}, errors.New("not implemented")
}

func (r *memRepo) ListMethods(ctx context.Context) ([]Method, error) {
	return nil, errors.New("not implemented")
}

func (r *memRepo) GetMethod(ctx context.Context, id int64) (*Method, error) {
	return (&memTx{repo: r}).GetMethod(ctx, id)
}

func (r *memRepo) Ping(ctx context.Context) error { return nil }
func (r *memRepo) Close() error                   { return nil }

func (r *memRepo) WithinTx(ctx context.Context, fn func(Tx) error) error {
	r.txCount++
	work := make(map[int64]GameRecord, len(r.games))
	for id, g := range r.games {
		work[id] = g
	}
	tx := &memTx{repo: r, games: work}
	if err := fn(tx); err != nil {
		return err
	}
	r.games = work
	return nil
}

type memTx struct {
	repo  *memRepo
	games map[int64]GameRecord
}

func (t *memTx) GetGame(ctx context.Context, id int64) (*GameRecord, error) {
	if t.repo.failErr != nil {
		return nil, t.repo.failErr
	}
	g, ok := t.games[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (t *memTx) GetMethod(ctx context.Context, id int64) (*Method, error) {
	m, ok := t.repo.methods[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (t *memTx) SaveSelection(ctx context.Context, id int64, s Selection) error {
	g := t.games[id]
	g.Selected = s.Selected
	g.ExpectedGoals = s.ExpectedGoals
	g.MethodID = s.MethodID
	g.MethodName = s.MethodName
	g.Link = s.Link
	t.games[id] = g
	return nil
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
func strPtr(v string) *string       { return &v }

func seededRepo(gameIDs ...int64) *memRepo {
	r := newMemRepo()
	for _, id := range gameIDs {
		r.games[id] = GameRecord{ID: id}
	}
	r.methods[1] = Method{ID: 1, Name: "Over 2.5", Color: "#FF0000"}
	r.methods[2] = Method{ID: 2, Name: "BTTS", Color: "#00FF00"}
	return r
}

func TestApply_EmptyBatch(t *testing.T) {
	r := seededRepo(1)
	n, err := NewSelectionUpdater(r).Apply(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("Apply(nil) = %d, %v; want 0, nil", n, err)
	}
	if r.txCount != 0 {
		t.Errorf("txCount = %d, want 0", r.txCount)
	}
}

func TestApply_SelectWithGoalsComma(t *testing.T) {
	r := seededRepo(7)
	n, err := NewSelectionUpdater(r).Apply(context.Background(), []SelectionRequest{
		{ID: 7, Selected: true, MethodID: int64Ptr(2), ExpectedGoals: Some("2,5"), Link: Some("example.com/jogo")},
	})
	if err != nil || n != 1 {
		t.Fatalf("Apply() = %d, %v; want 1, nil", n, err)
	}

	g := r.games[7]
	if !g.Selected {
		t.Error("Selected = false")
	}
	if g.ExpectedGoals == nil || *g.ExpectedGoals != 2.5 {
		t.Errorf("ExpectedGoals = %v, want 2.5", g.ExpectedGoals)
	}
	if g.MethodID == nil || *g.MethodID != 2 || deref(g.MethodName) != "BTTS" {
		t.Errorf("method = %v %q, want 2 BTTS", g.MethodID, deref(g.MethodName))
	}
	if deref(g.Link) != "https://example.com/jogo" {
		t.Errorf("Link = %q", deref(g.Link))
	}
}

func TestApply_Deselect(t *testing.T) {
	r := seededRepo(3)
	r.games[3] = GameRecord{
		ID:            3,
		Selected:      true,
		ExpectedGoals: float64Ptr(1.5),
		MethodID:      int64Ptr(1),
		MethodName:    strPtr("Over 2.5"),
		Link:          strPtr("https://example.com"),
	}

	_, err := NewSelectionUpdater(r).Apply(context.Background(), []SelectionRequest{
		{ID: 3, Selected: false, MethodID: int64Ptr(1), Link: Some("https://other.com")},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	g := r.games[3]
	if g.Selected || g.MethodID != nil || g.MethodName != nil || g.Link != nil {
		t.Errorf("game = %+v, want method and link cleared", g)
	}
	if g.ExpectedGoals == nil || *g.ExpectedGoals != 1.5 {
		t.Errorf("ExpectedGoals = %v, want kept at 1.5", g.ExpectedGoals)
	}
}

func TestApply_OptionalFields(t *testing.T) {
	base := GameRecord{ID: 1, ExpectedGoals: float64Ptr(2), Link: strPtr("https://a.com")}

	tests := []struct {
		name      string
		goals     Optional
		link      Optional
		wantGoals *float64
		wantLink  string
	}{
		{"absent keeps", Optional{}, Optional{}, float64Ptr(2), "https://a.com"},
		{"null link clears", Optional{}, Null(), float64Ptr(2), "<nil>"},
		{"blank link clears", Optional{}, Some(" "), float64Ptr(2), "<nil>"},
		{"value replaces", Some("3.25"), Some("b.com"), float64Ptr(3.25), "https://b.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := seededRepo()
			r.games[1] = base

			_, err := NewSelectionUpdater(r).Apply(context.Background(), []SelectionRequest{
				{ID: 1, Selected: true, MethodID: int64Ptr(1), ExpectedGoals: tt.goals, Link: tt.link},
			})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}

			g := r.games[1]
			switch {
			case tt.wantGoals == nil && g.ExpectedGoals != nil:
				t.Errorf("ExpectedGoals = %v, want nil", *g.ExpectedGoals)
			case tt.wantGoals != nil && (g.ExpectedGoals == nil || *g.ExpectedGoals != *tt.wantGoals):
				t.Errorf("ExpectedGoals = %v, want %v", g.ExpectedGoals, *tt.wantGoals)
			}
			if got := deref(g.Link); got != tt.wantLink {
				t.Errorf("Link = %q, want %q", got, tt.wantLink)
			}
		})
	}
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      SelectionRequest
		wantCode Code
		wantMsg  string
	}{
		{"unknown game", SelectionRequest{ID: 99, Selected: false}, CodeRecordNotFound, ""},
		{"zero id", SelectionRequest{ID: 0}, CodeRecordNotFound, ""},
		{"selected without method", SelectionRequest{ID: 1, Selected: true}, CodeMissingMethod, ""},
		{"non-positive method", SelectionRequest{ID: 1, Selected: true, MethodID: int64Ptr(0)}, CodeUnknownMethod, "Método selecionado é inválido."},
		{"missing method", SelectionRequest{ID: 1, Selected: true, MethodID: int64Ptr(42)}, CodeUnknownMethod, "Método selecionado não existe."},
		{"bad goals", SelectionRequest{ID: 1, ExpectedGoals: Some("muitos")}, CodeInvalidGoalsValue, ""},
		{"null goals", SelectionRequest{ID: 1, Selected: true, MethodID: int64Ptr(1), ExpectedGoals: Null()}, CodeInvalidGoalsValue, ""},
		{"blank goals", SelectionRequest{ID: 1, Selected: true, MethodID: int64Ptr(1), ExpectedGoals: Some(" ")}, CodeInvalidGoalsValue, ""},
		{"null goals deselected", SelectionRequest{ID: 1, ExpectedGoals: Null()}, CodeInvalidGoalsValue, ""},
		{"method checked before goals", SelectionRequest{ID: 1, Selected: true, ExpectedGoals: Some("abc")}, CodeMissingMethod, ""},
		{"unknown method before goals", SelectionRequest{ID: 1, Selected: true, MethodID: int64Ptr(42), ExpectedGoals: Some("abc")}, CodeUnknownMethod, ""},
		{"goals before link", SelectionRequest{ID: 1, Selected: true, MethodID: int64Ptr(1), ExpectedGoals: Some("abc"), Link: Some("ftp://x.com")}, CodeInvalidGoalsValue, ""},
		{"bad link", SelectionRequest{ID: 1, Selected: true, MethodID: int64Ptr(1), Link: Some("ftp://x.com")}, CodeInvalidLink, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := seededRepo(1)
			_, err := NewSelectionUpdater(r).Apply(context.Background(), []SelectionRequest{tt.req})

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if e.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", e.Code, tt.wantCode)
			}
			if e.Index != 0 {
				t.Errorf("Index = %d, want 0", e.Index)
			}
			if tt.wantMsg != "" && e.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestApply_AtomicOnLateFailure(t *testing.T) {
	r := seededRepo(1, 2, 3, 4, 5, 6)

	reqs := make([]SelectionRequest, 0, 6)
	for id := int64(1); id <= 5; id++ {
		reqs = append(reqs, SelectionRequest{ID: id, Selected: true, MethodID: int64Ptr(1)})
	}
	reqs = append(reqs, SelectionRequest{ID: 6, Selected: true, MethodID: int64Ptr(999)})

	n, err := NewSelectionUpdater(r).Apply(context.Background(), reqs)
	if n != 0 {
		t.Errorf("updated = %d, want 0", n)
	}

	var e *Error
	if !errors.As(err, &e) || e.Code != CodeUnknownMethod || e.Index != 5 {
		t.Fatalf("error = %v, want UnknownMethod at index 5", err)
	}
	for id, g := range r.games {
		if g.Selected {
			t.Errorf("game %d selected after rolled back batch", id)
		}
	}
}

func TestApply_StorageFailure(t *testing.T) {
	r := seededRepo(1)
	r.failErr = errors.New("disk I/O error")

	_, err := NewSelectionUpdater(r).Apply(context.Background(), []SelectionRequest{{ID: 1}})

	var e *Error
	if !errors.As(err, &e) || e.Kind != KindStorage {
		t.Fatalf("error = %v, want storage error", err)
	}
	if e.Detail() != "disk I/O error" {
		t.Errorf("Detail() = %q", e.Detail())
	}
}
