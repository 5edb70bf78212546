package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/unpoly-go/unpoly"
)

type server struct {
	store TaskStore
	log   zerolog.Logger
}

func (s *server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return unpoly.MiddlewareWithLogger(&s.log, next)
	})
	router.Get("/", s.handleIndex)
	router.Get("/tasks/new", s.handleNewTask)
	router.Post("/tasks", s.handleCreateTask)
	router.Post("/tasks/{id}/toggle", s.handleToggleTask)
	router.Delete("/tasks/{id}", s.handleDeleteTask)
	return router
}

// layerContext is the per-layer context round-tripped with the frontend.
type layerContext struct {
	Filter string `json:"filter,omitempty"`
}

func readLayerContext(up *unpoly.Unpoly) layerContext {
	var lc layerContext
	if raw, ok := up.Context(); ok {
		// a malformed context header degraded to JSON null; ignore it
		json.Unmarshal(raw, &lc)
	}
	return lc
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	up := unpoly.FromRequestContext(r)
	up.SetSuccess(true)

	lc := readLayerContext(up)
	if filter := r.URL.Query().Get("filter"); filter != "" {
		lc.Filter = filter
		if err := up.SetContext(lc); err != nil {
			s.serverError(w, err, "Could not set layer context")
			return
		}
	}

	tasks, err := s.store.All(lc.Filter == "open")
	if err != nil {
		s.serverError(w, err, "Could not list tasks")
		return
	}

	up.SetTitle("Tasks")
	data := taskListData{Tasks: tasks, Filter: lc.Filter}
	if target, ok := up.Target(); ok && target == "#tasks" {
		s.render(w, "tasks", data)
		return
	}
	s.render(w, "page", data)
}

func (s *server) handleNewTask(w http.ResponseWriter, r *http.Request) {
	up := unpoly.FromRequestContext(r)
	up.SetTitle("New task")
	// inside an overlay the form needs no page chrome
	if up.Mode().IsOverlay() {
		s.render(w, "form", taskFormData{})
		return
	}
	s.render(w, "formPage", taskFormData{})
}

func (s *server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	up := unpoly.FromRequestContext(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Could not parse form", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))

	formErrors := map[string]string{}
	if name == "" {
		formErrors["name"] = "Name must not be empty"
	}

	// live validation probe: re-render the form, do not save
	if fields := up.Validate(); len(fields) > 0 {
		s.render(w, "form", taskFormData{Name: name, Errors: formErrors})
		return
	}

	if len(formErrors) > 0 {
		up.SetSuccess(false)
		w.WriteHeader(http.StatusUnprocessableEntity)
		s.render(w, "form", taskFormData{Name: name, Errors: formErrors})
		return
	}

	task, err := s.store.Insert(name)
	if err != nil {
		s.serverError(w, err, "Could not save task")
		return
	}

	up.SetSuccess(true)
	up.SetEvictCache("/*")
	if err := up.EmitEvent("task:created", map[string]any{"id": task.ID}); err != nil {
		s.serverError(w, err, "Could not emit event")
		return
	}

	if up.Mode().IsOverlay() {
		// close the overlay; the parent layer reacts to the event
		if err := up.AcceptLayer(map[string]any{"id": task.ID}); err != nil {
			s.serverError(w, err, "Could not accept layer")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	up.SetLocation("/")
	up.SetMethod(http.MethodGet)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	up := unpoly.FromRequestContext(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	task, found, err := s.store.Get(id)
	if err != nil {
		s.serverError(w, err, "Could not load task")
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}
	if err := s.store.SetDone(id, !task.Done); err != nil {
		s.serverError(w, err, "Could not update task")
		return
	}

	up.SetSuccess(true)
	up.SetExpireCache("/*")
	err = up.EmitEventLayer("task:toggled",
		map[string]any{"id": id, "done": !task.Done}, unpoly.LayerCurrent)
	if err != nil {
		s.serverError(w, err, "Could not emit event")
		return
	}

	s.renderTaskList(w, up)
}

func (s *server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	up := unpoly.FromRequestContext(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := s.store.Delete(id); err != nil {
		s.serverError(w, err, "Could not delete task")
		return
	}

	up.SetSuccess(true)
	up.SetEvictCache("/*")
	s.renderTaskList(w, up)
}

func (s *server) renderTaskList(w http.ResponseWriter, up *unpoly.Unpoly) {
	lc := readLayerContext(up)
	tasks, err := s.store.All(lc.Filter == "open")
	if err != nil {
		s.serverError(w, err, "Could not list tasks")
		return
	}
	s.render(w, "tasks", taskListData{Tasks: tasks, Filter: lc.Filter})
}

func (s *server) serverError(w http.ResponseWriter, err error, msg string) {
	s.log.Error().Err(err).Msg(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}
