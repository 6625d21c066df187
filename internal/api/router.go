package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/formcraft/formcraft/internal/middleware"
	"github.com/formcraft/formcraft/internal/services"
)

// Router wires the service layer to the HTTP surface. Authoring endpoints
// require a bearer token; the respondent endpoints are public.
type Router struct {
	forms    *services.FormService
	sessions *services.SessionService
	export   *services.ExportService
	summary  *services.SummaryService
	auth     *services.AuthService
}

func NewRouter(forms *services.FormService, sessions *services.SessionService, export *services.ExportService, summary *services.SummaryService, auth *services.AuthService) *Router {
	return &Router{forms: forms, sessions: sessions, export: export, summary: summary, auth: auth}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/login", rt.handleLogin) // POST

	// Authoring surface
	mux.HandleFunc("/api/form", middleware.RequireAuth(rt.handleForm))                        // GET
	mux.HandleFunc("/api/form/settings", middleware.RequireAuth(rt.handleSettings))           // PUT
	mux.HandleFunc("/api/form/theme", middleware.RequireAuth(rt.handleTheme))                 // PUT
	mux.HandleFunc("/api/form/sections", middleware.RequireAuth(rt.handleSections))           // POST
	mux.HandleFunc("/api/form/sections/", middleware.RequireAuth(rt.handleSectionScoped))     // PUT/DELETE /api/form/sections/{id}
	mux.HandleFunc("/api/form/questions", middleware.RequireAuth(rt.handleQuestions))         // POST
	mux.HandleFunc("/api/form/questions/", middleware.RequireAuth(rt.handleQuestionScoped))   // PUT/DELETE /{id}, POST /{id}/duplicate
	mux.HandleFunc("/api/form/questions-reorder", middleware.RequireAuth(rt.handleReorder))   // POST
	mux.HandleFunc("/api/form/reset", middleware.RequireAuth(rt.handleReset))                 // POST
	mux.HandleFunc("/api/form/responses", middleware.RequireAuth(rt.handleResponses))         // GET/DELETE
	mux.HandleFunc("/api/form/responses/summary", middleware.RequireAuth(rt.handleSummary))   // GET
	mux.HandleFunc("/api/form/responses/export", middleware.RequireAuth(rt.handleExport))     // GET

	// Respondent surface
	mux.HandleFunc("/api/published", rt.handlePublished) // GET
	mux.HandleFunc("/api/sessions", rt.handleSessions)   // POST
	mux.HandleFunc("/api/sessions/", rt.handleSessionScoped)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		}
		writeJSON(w, status, map[string]string{"error": se.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": res.Token, "email": res.Email})
}

// GET /api/form
func (rt *Router) handleForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, rt.forms.State())
}

// PUT /api/form/settings
func (rt *Router) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	var patch services.SettingsPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	rt.forms.UpdateSettings(patch)
	writeJSON(w, http.StatusOK, rt.forms.State().Settings)
}

// PUT /api/form/theme
func (rt *Router) handleTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w)
		return
	}
	var patch services.ThemePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	rt.forms.UpdateTheme(patch)
	writeJSON(w, http.StatusOK, rt.forms.State().Theme)
}

// POST /api/form/sections
func (rt *Router) handleSections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	sec := rt.forms.AddSection()
	writeJSON(w, http.StatusCreated, sec)
}

// PUT/DELETE /api/form/sections/{id}
func (rt *Router) handleSectionScoped(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/form/sections/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var patch services.SectionPatch
		if !decodeBody(w, r, &patch) {
			return
		}
		rt.forms.UpdateSection(id, patch)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case http.MethodDelete:
		rt.forms.DeleteSection(id)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	default:
		methodNotAllowed(w)
	}
}

// POST /api/form/questions
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Type      string `json:"type"`
		SectionID string `json:"sectionId"`
		Index     *int   `json:"index"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	t, ok := services.ParseQuestionType(req.Type)
	if !ok {
		writeErr(w, services.NewInvalidError("unknown question type"))
		return
	}
	index := -1
	if req.Index != nil {
		index = *req.Index
	}
	q := rt.forms.AddQuestion(t, req.SectionID, index)
	if q == nil {
		writeErr(w, services.NewInvalidError("no section to attach question to"))
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// PUT/DELETE /api/form/questions/{id}, POST /api/form/questions/{id}/duplicate
func (rt *Router) handleQuestionScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/form/questions/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 2 && parts[1] == "duplicate" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		q := rt.forms.DuplicateQuestion(id)
		if q == nil {
			writeErr(w, services.NewNotFoundError("question not found"))
			return
		}
		writeJSON(w, http.StatusCreated, q)
		return
	}
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var patch services.QuestionPatch
		if !decodeBody(w, r, &patch) {
			return
		}
		if patch.Type != nil {
			if _, ok := services.ParseQuestionType(string(*patch.Type)); !ok {
				writeErr(w, services.NewInvalidError("unknown question type"))
				return
			}
		}
		rt.forms.UpdateQuestion(id, patch)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case http.MethodDelete:
		rt.forms.DeleteQuestion(id)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	default:
		methodNotAllowed(w)
	}
}

// POST /api/form/questions-reorder
func (rt *Router) handleReorder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		FromIndex int `json:"fromIndex"`
		ToIndex   int `json:"toIndex"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	rt.forms.ReorderQuestions(req.FromIndex, req.ToIndex)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// POST /api/form/reset
func (rt *Router) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	rt.forms.ResetForm(actorFrom(r))
	writeJSON(w, http.StatusOK, rt.forms.State())
}

// GET/DELETE /api/form/responses
func (rt *Router) handleResponses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, rt.forms.State().Responses)
	case http.MethodDelete:
		removed := rt.forms.ClearResponses(actorFrom(r))
		writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
	default:
		methodNotAllowed(w)
	}
}

// GET /api/form/responses/summary
func (rt *Router) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, rt.summary.Summarize())
}

// GET /api/form/responses/export
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	res, err := rt.export.ExportCSV()
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+res.Filename+"\"")
	_, _ = w.Write(res.Data)
}

func actorFrom(r *http.Request) string {
	if c := middleware.ClaimsFromContext(r.Context()); c != nil {
		return c.Email
	}
	return "admin"
}
