package api

import (
	"net/http"
	"strings"

	"github.com/formcraft/formcraft/internal/services"
)

// PublishedForm is the schema view served to respondents: everything the
// renderer needs, none of the authoring internals and no response log.
type PublishedForm struct {
	Title               string                 `json:"title"`
	Description         string                 `json:"description"`
	LogoBase64          string                 `json:"logoBase64,omitempty"`
	ConfirmationMessage string                 `json:"confirmationMessage"`
	Theme               services.ThemeSettings `json:"theme"`
	Sections            []services.Section     `json:"sections"`
	Questions           []services.Question    `json:"questions"`
}

// GET /api/published
func (rt *Router) handlePublished(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	st := rt.forms.Schema()
	writeJSON(w, http.StatusOK, PublishedForm{
		Title:               st.Settings.Title,
		Description:         st.Settings.Description,
		LogoBase64:          st.Settings.LogoBase64,
		ConfirmationMessage: st.Settings.ConfirmationMessage,
		Theme:               st.Theme,
		Sections:            st.Sections,
		Questions:           st.Questions,
	})
}

// POST /api/sessions
func (rt *Router) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusCreated, rt.sessions.Start())
}

// GET /api/sessions/{id}
// POST /api/sessions/{id}/answers|advance|retreat|submit
func (rt *Router) handleSessionScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		state, err := rt.sessions.Get(id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
		return
	}

	if len(parts) != 2 || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var (
		state services.SessionState
		err   error
	)
	switch parts[1] {
	case "answers":
		var req struct {
			QuestionID string               `json:"questionId"`
			Value      services.AnswerValue `json:"value"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.QuestionID == "" {
			writeErr(w, services.NewInvalidError("questionId required"))
			return
		}
		state, err = rt.sessions.SetAnswer(id, req.QuestionID, req.Value)
	case "advance":
		state, err = rt.sessions.Advance(id)
	case "retreat":
		state, err = rt.sessions.Retreat(id)
	case "submit":
		state, err = rt.sessions.Submit(id)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
