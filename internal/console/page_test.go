package console

import (
	"errors"
	"testing"

	"fodi-backend/internal/adminclient"
	"fodi-backend/internal/auth"
)

type record struct {
	ID   uint
	Name string
}

type fakeResource struct {
	items     []record
	listErr   error
	saveErr   error
	deleteErr error
	lists     int
	created   []string
	updated   []uint
	deleted   []uint
}

func (f *fakeResource) List() ([]record, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]record(nil), f.items...), nil
}

func (f *fakeResource) Create(d string) (record, error) {
	if f.saveErr != nil {
		return record{}, f.saveErr
	}
	r := record{ID: uint(len(f.items) + 1), Name: d}
	f.items = append(f.items, r)
	f.created = append(f.created, d)
	return r, nil
}

func (f *fakeResource) Update(r record, d string) (record, error) {
	if f.saveErr != nil {
		return record{}, f.saveErr
	}
	f.updated = append(f.updated, r.ID)
	r.Name = d
	return r, nil
}

func (f *fakeResource) Delete(r record) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, r.ID)
	return nil
}

func (f *fakeResource) EmptyDraft() string        { return "" }
func (f *fakeResource) DraftFrom(r record) string { return r.Name }
func (f *fakeResource) Key(r record) uint         { return r.ID }

func TestPageLoad(t *testing.T) {
	res := &fakeResource{items: []record{{1, "Лосось"}, {2, "Рис"}}}
	p := NewPage[record, string](res)

	if p.State() != Idle {
		t.Fatalf("new page must be idle, got %v", p.State())
	}
	if err := p.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Items()) != 2 || p.Banner() != "" {
		t.Errorf("unexpected page after load: %v / %q", p.Items(), p.Banner())
	}

	res.listErr = &adminclient.APIError{Status: 500, Message: "База недоступна"}
	if err := p.Load(); err == nil {
		t.Fatal("expected load error")
	}
	if p.State() != Failed || p.Banner() != "База недоступна" {
		t.Errorf("expected failed state with banner, got %v / %q", p.State(), p.Banner())
	}
	if len(p.Items()) != 2 {
		t.Errorf("failed load must keep the last list, got %v", p.Items())
	}
}

func TestPageCreateAndEdit(t *testing.T) {
	res := &fakeResource{items: []record{{1, "Лосось"}}}
	p := NewPage[record, string](res)
	_ = p.Load()

	p.StartCreate()
	if _, ok := p.Mode().(Creating[string]); !ok {
		t.Fatalf("expected Creating mode, got %T", p.Mode())
	}
	if err := p.EditDraft(func(d *string) { *d = "Нори" }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Submit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.created) != 1 || res.created[0] != "Нори" {
		t.Errorf("expected create with draft, got %v", res.created)
	}
	if _, ok := p.Mode().(Browsing); !ok {
		t.Errorf("expected Browsing after submit, got %T", p.Mode())
	}
	if res.lists != 2 || len(p.Items()) != 2 {
		t.Errorf("submit must re-fetch: lists=%d items=%v", res.lists, p.Items())
	}

	rec, _ := p.Find(1)
	p.StartEdit(rec)
	m, ok := p.Mode().(Editing[record, string])
	if !ok || m.Draft != "Лосось" {
		t.Fatalf("expected Editing with pre-filled draft, got %#v", p.Mode())
	}
	_ = p.EditDraft(func(d *string) { *d = "Лосось охлаждённый" })
	if err := p.Submit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.updated) != 1 || res.updated[0] != 1 {
		t.Errorf("expected update of record 1, got %v", res.updated)
	}
}

func TestPageSubmitFailureKeepsDraft(t *testing.T) {
	res := &fakeResource{saveErr: &adminclient.APIError{Status: 400, Message: "Нетто не может превышать брутто"}}
	p := NewPage[record, string](res)

	p.StartCreate()
	_ = p.EditDraft(func(d *string) { *d = "Рис" })
	if err := p.Submit(); err == nil {
		t.Fatal("expected submit error")
	}

	m, ok := p.Mode().(Creating[string])
	if !ok || m.Draft != "Рис" {
		t.Errorf("draft must survive a failed submit, got %#v", p.Mode())
	}
	if p.Banner() != "Нетто не может превышать брутто" {
		t.Errorf("unexpected banner %q", p.Banner())
	}
	if res.lists != 0 {
		t.Errorf("failed submit must not re-fetch, lists=%d", res.lists)
	}
}

func TestPageDelete(t *testing.T) {
	res := &fakeResource{items: []record{{1, "Лосось"}, {2, "Рис"}}}
	p := NewPage[record, string](res)
	_ = p.Load()

	if err := p.ConfirmDelete(); !errors.Is(err, ErrWrongMode) {
		t.Fatalf("delete without confirmation must fail, got %v", err)
	}

	rec, _ := p.Find(2)
	p.RequestDelete(rec)
	if err := p.ConfirmDelete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Items()) != 1 || p.Items()[0].ID != 1 {
		t.Errorf("record must be removed locally, got %v", p.Items())
	}
	if res.lists != 1 {
		t.Errorf("delete must not re-fetch, lists=%d", res.lists)
	}

	res.deleteErr = &adminclient.APIError{Status: 409, Message: "Партия используется в полуфабрикатах"}
	rec, _ = p.Find(1)
	p.RequestDelete(rec)
	if err := p.ConfirmDelete(); err == nil {
		t.Fatal("expected delete error")
	}
	if len(p.Items()) != 1 {
		t.Errorf("failed delete must keep the record, got %v", p.Items())
	}
}

func TestPageCancel(t *testing.T) {
	p := NewPage[record, string](&fakeResource{})
	p.StartCreate()
	p.Cancel()
	if _, ok := p.Mode().(Browsing); !ok {
		t.Errorf("expected Browsing after cancel, got %T", p.Mode())
	}
	if err := p.Submit(); !errors.Is(err, ErrWrongMode) {
		t.Errorf("submit while browsing must fail, got %v", err)
	}
	if err := p.EditDraft(func(*string) {}); !errors.Is(err, ErrWrongMode) {
		t.Errorf("editing while browsing must fail, got %v", err)
	}
}

func TestPageSignInRedirect(t *testing.T) {
	p := NewPage[record, string](&fakeResource{listErr: adminclient.ErrSignInRequired})
	_ = p.Load()
	if p.Redirect() != auth.SignInPath {
		t.Errorf("expected redirect to %s, got %q", auth.SignInPath, p.Redirect())
	}
	if p.Banner() == "" {
		t.Error("expected a banner")
	}
}
