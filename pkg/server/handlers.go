package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"atelier/pkg/catalog"
	"atelier/pkg/models"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type statusBody struct {
	Status string `json:"status"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, user, err := s.auth.Login(body.Email, body.Password)
	if err != nil {
		s.log.Warn("login rejected", zap.String("email", body.Email), zap.String("client_ip", clientIP(r)))
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	token, err := s.auth.Issue(user)
	if err != nil {
		s.log.Error("issuing token", zap.Error(err))
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *Server) artworks(w http.ResponseWriter, r *http.Request) {
	kind := catalog.Kind(r.URL.Query().Get("kind"))
	list, err := s.backend.Artworks(r.Context(), kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"artworks": nonNil(list)})
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, yerr := strconv.Atoi(q.Get("year"))
	month, merr := strconv.Atoi(q.Get("month"))
	if yerr != nil || merr != nil {
		writeMessage(w, http.StatusBadRequest, "year and month are required")
		return
	}

	events, err := s.backend.MonthEvents(r.Context(), year, time.Month(month))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"events": nonNil(events)})
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if err := decodeBody(r, &e); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.backend.CreateEvent(r.Context(), e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"event": created})
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if err := decodeBody(r, &e); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.backend.UpdateEvent(r.Context(), chi.URLParam(r, "id"), e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"event": updated})
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Event deleted")
}

func (s *Server) eventStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.backend.SetEventStatus(r.Context(), chi.URLParam(r, "id"), models.EventStatus(body.Status))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"event": updated})
}

func (s *Server) tasks(w http.ResponseWriter, r *http.Request) {
	filter, err := models.ParseTaskFilter(r.URL.Query().Get("status"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.backend.Tasks(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"tasks": nonNil(list)})
}

func (s *Server) taskStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.backend.TaskStats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var t models.Task
	if err := decodeBody(r, &t); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.backend.CreateTask(r.Context(), t)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"task": created})
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var t models.Task
	if err := decodeBody(r, &t); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.backend.UpdateTask(r.Context(), chi.URLParam(r, "id"), t)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"task": updated})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Task deleted")
}

func (s *Server) taskStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := decodeBody(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.backend.SetTaskStatus(r.Context(), chi.URLParam(r, "id"), models.TaskStatus(body.Status))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"task": updated})
}

func (s *Server) toggleChecklist(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "checklist index must be a number")
		return
	}
	updated, err := s.backend.ToggleChecklistItem(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"task": updated})
}

// fail logs unexpected backend errors before answering
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !isClientError(err) {
		s.log.Error("backend failure",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeError(w, err)
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
