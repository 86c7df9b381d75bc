package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"chroma/internal/commands"
	"chroma/internal/events"
	"chroma/internal/plugin/fs"
	"chroma/internal/window"
)

type invokeResponse struct {
	Result interface{} `json:"result"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("command")

	if status, kind, err := s.checkInvoke(r); err != nil {
		s.writeError(w, status, kind, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid_args", err)
		return
	}

	result, err := s.invoker.Invoke(r.Context(), name, s.window, body)
	if err != nil {
		status, kind := classify(err)
		s.writeError(w, status, kind, err)
		return
	}

	s.writeJSON(w, http.StatusOK, invokeResponse{Result: result})
}

// classify maps command errors onto HTTP status and a stable kind string.
func classify(err error) (int, string) {
	var argsErr *commands.ArgsError
	var opErr *window.OperationError

	switch {
	case errors.Is(err, commands.ErrUnknownCommand):
		return http.StatusNotFound, "unknown_command"
	case errors.As(err, &argsErr), errors.Is(err, fs.ErrNotAbsolute):
		return http.StatusBadRequest, "invalid_args"
	case errors.Is(err, fs.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.As(err, &opErr):
		return http.StatusConflict, "window_operation_failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "internal", errors.New("streaming unsupported"))
		return
	}

	ch := make(chan events.Event, eventBacklog)
	sub := events.HandlerFunc{
		Name: fmt.Sprintf("bridge-stream-%d", s.streams.Add(1)),
		Fn: func(e events.Event) {
			select {
			case ch <- e:
			default:
				s.logger.Warning("Bridge", "event stream backlog full, dropping event", map[string]interface{}{
					"event": e.Name,
				})
			}
		},
	}
	s.bus.Subscribe(events.Wildcard, sub)
	defer s.bus.Unsubscribe(events.Wildcard, sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-ch:
			data, err := json.Marshal(e.Payload)
			if err != nil {
				s.logger.Error("Bridge", err, map[string]interface{}{"event": e.Name})
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Bridge", err, map[string]interface{}{"status": status})
		http.Error(w, `{"error":{"kind":"internal","message":"encode response"}}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("Bridge", "response write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind string, err error) {
	s.writeJSON(w, status, errorResponse{Error: errorBody{Kind: kind, Message: err.Error()}})
}
