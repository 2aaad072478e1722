// Package console holds the admin page controllers: one generic Page per
// entity that loads a list, keeps an edit draft and submits it through the
// admin API.
package console

import (
	"errors"

	"fodi-backend/internal/adminclient"
	"fodi-backend/internal/auth"
)

var ErrWrongMode = errors.New("operation not allowed in the current mode")

type LoadState int

const (
	Idle LoadState = iota
	Loading
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Mode is what the page is doing with its list: one of Browsing,
// Creating, Editing or ConfirmingDelete.
type Mode interface{ mode() }

type Browsing struct{}

type Creating[D any] struct{ Draft D }

type Editing[R, D any] struct {
	Record R
	Draft  D
}

type ConfirmingDelete[R any] struct{ Record R }

func (Browsing) mode()            {}
func (Creating[D]) mode()         {}
func (Editing[R, D]) mode()       {}
func (ConfirmingDelete[R]) mode() {}

// Resource adapts one entity of the admin API to a Page.
type Resource[R, D any] interface {
	List() ([]R, error)
	Create(draft D) (R, error)
	Update(record R, draft D) (R, error)
	Delete(record R) error
	EmptyDraft() D
	DraftFrom(record R) D
	Key(record R) uint
}

type Page[R, D any] struct {
	res      Resource[R, D]
	items    []R
	state    LoadState
	banner   string
	mode     Mode
	redirect string
}

func NewPage[R, D any](res Resource[R, D]) *Page[R, D] {
	return &Page[R, D]{res: res, mode: Browsing{}}
}

func (p *Page[R, D]) Items() []R       { return p.items }
func (p *Page[R, D]) State() LoadState { return p.state }
func (p *Page[R, D]) Mode() Mode       { return p.mode }

// Banner is the single page-level error message, empty when there is none.
func (p *Page[R, D]) Banner() string { return p.banner }

// Redirect is the sign-in path once the API has refused the session.
func (p *Page[R, D]) Redirect() string { return p.redirect }

// Find returns the loaded record with the given key.
func (p *Page[R, D]) Find(key uint) (R, bool) {
	for _, it := range p.items {
		if p.res.Key(it) == key {
			return it, true
		}
	}
	var zero R
	return zero, false
}

// Load replaces the list with a fresh fetch. On failure the previous list
// is kept and the page shows the banner.
func (p *Page[R, D]) Load() error {
	p.state = Loading
	items, err := p.res.List()
	if err != nil {
		p.state = Failed
		p.fail(err)
		return err
	}
	p.items = items
	p.state = Idle
	p.banner = ""
	return nil
}

func (p *Page[R, D]) StartCreate() {
	p.mode = Creating[D]{Draft: p.res.EmptyDraft()}
}

func (p *Page[R, D]) StartEdit(record R) {
	p.mode = Editing[R, D]{Record: record, Draft: p.res.DraftFrom(record)}
}

// EditDraft changes the draft of the current create or edit.
func (p *Page[R, D]) EditDraft(fn func(*D)) error {
	switch m := p.mode.(type) {
	case Creating[D]:
		fn(&m.Draft)
		p.mode = m
	case Editing[R, D]:
		fn(&m.Draft)
		p.mode = m
	default:
		return ErrWrongMode
	}
	return nil
}

func (p *Page[R, D]) Cancel() {
	p.mode = Browsing{}
}

// Submit creates or updates from the current draft and re-fetches the list.
// A failed request keeps the draft so it can be corrected.
func (p *Page[R, D]) Submit() error {
	var err error
	switch m := p.mode.(type) {
	case Creating[D]:
		_, err = p.res.Create(m.Draft)
	case Editing[R, D]:
		_, err = p.res.Update(m.Record, m.Draft)
	default:
		return ErrWrongMode
	}
	if err != nil {
		p.fail(err)
		return err
	}
	p.mode = Browsing{}
	p.banner = ""
	return p.Load()
}

func (p *Page[R, D]) RequestDelete(record R) {
	p.mode = ConfirmingDelete[R]{Record: record}
}

// ConfirmDelete deletes the record under confirmation and drops it from the
// local list once the API has accepted.
func (p *Page[R, D]) ConfirmDelete() error {
	m, ok := p.mode.(ConfirmingDelete[R])
	if !ok {
		return ErrWrongMode
	}
	p.mode = Browsing{}

	if err := p.res.Delete(m.Record); err != nil {
		p.fail(err)
		return err
	}

	key := p.res.Key(m.Record)
	kept := make([]R, 0, len(p.items))
	for _, it := range p.items {
		if p.res.Key(it) != key {
			kept = append(kept, it)
		}
	}
	p.items = kept
	p.banner = ""
	return nil
}

func (p *Page[R, D]) fail(err error) {
	p.banner = Describe(err)
	if errors.Is(err, adminclient.ErrSignInRequired) {
		p.redirect = auth.SignInPath
	}
}

// Describe flattens an API failure into a banner line.
func Describe(err error) string {
	var (
		apiErr    *adminclient.APIError
		decodeErr *adminclient.DecodeError
		draftErr  *DraftError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, adminclient.ErrSignInRequired):
		return "Требуется вход в систему"
	case errors.As(err, &draftErr):
		return draftErr.Error()
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Ошибка сервера"
	case errors.As(err, &decodeErr):
		return "Некорректный ответ сервера: " + decodeErr.Error()
	}
	return "Сервер недоступен: " + err.Error()
}
