package presenter_test

import (
	"context"
	"sync"

	"github.com/aretw0/notebox/pkg/notes"
	"github.com/aretw0/notebox/pkg/presenter"
)

type listView struct {
	mu      sync.Mutex
	renders [][]notes.Note
}

func (v *listView) RenderList(list []notes.Note) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renders = append(v.renders, list)
}

func (v *listView) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.renders)
}

func (v *listView) last() []notes.Note {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.renders) == 0 {
		return nil
	}
	return v.renders[len(v.renders)-1]
}

type detailView struct {
	mu     sync.Mutex
	note   *notes.Note
	absent int
}

func (v *detailView) RenderNote(n notes.Note) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.note = &n
}

func (v *detailView) RenderAbsent() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.note = nil
	v.absent++
}

func (v *detailView) shown() (notes.Note, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.note == nil {
		return notes.Note{}, false
	}
	return *v.note, true
}

func (v *detailView) absences() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.absent
}

type forms struct {
	values    map[string]string
	submitted bool
	asked     []presenter.Form
}

func (f *forms) Present(ctx context.Context, form presenter.Form) (map[string]string, bool, error) {
	f.asked = append(f.asked, form)
	return f.values, f.submitted, nil
}

type modals struct {
	mu        sync.Mutex
	presented []string
	dismissed int
}

func (m *modals) Present(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presented = append(m.presented, id)
	return nil
}

func (m *modals) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissed++
}

type alert struct{ header, message string }

type notifier struct {
	mu     sync.Mutex
	toasts []string
	alerts []alert
}

func (n *notifier) Toast(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, message)
}

func (n *notifier) Alert(header, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert{header, message})
}

func (n *notifier) lastToast() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.toasts) == 0 {
		return ""
	}
	return n.toasts[len(n.toasts)-1]
}

type navigation struct {
	path    string
	replace bool
}

type navigator struct {
	visits []navigation
}

func (n *navigator) Navigate(path string, replace bool) {
	n.visits = append(n.visits, navigation{path, replace})
}
