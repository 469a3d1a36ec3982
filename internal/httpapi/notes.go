package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aretw0/notebox/pkg/notes"
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.notes.List(r.Context(), scope(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var d notes.Draft
	if err := decode(w, r, &d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	n, err := s.notes.Create(r.Context(), scope(r), d)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	n, err := s.notes.Get(r.Context(), scope(r), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var d notes.Draft
	if err := decode(w, r, &d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.notes.Update(r.Context(), scope(r), mux.Vars(r)["id"], d); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Delete(r.Context(), scope(r), mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
