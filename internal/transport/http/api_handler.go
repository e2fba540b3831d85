package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
)

// HistoryReader lists completed session records for the results screen.
type HistoryReader interface {
	List(ctx context.Context, username string) ([]domain.HistoryEntry, error)
}

// APIHandler exposes the account, history, and admin bank operations as
// plain JSON endpoints. Admin routes are gated by the X-Admin-Key header.
type APIHandler struct {
	accounts *app.AccountService
	bank     *app.BankService
	history  HistoryReader
}

func NewAPIHandler(accounts *app.AccountService, bank *app.BankService, history HistoryReader) *APIHandler {
	return &APIHandler{accounts: accounts, bank: bank, history: history}
}

// Register wires the API routes onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/register", h.handleRegister)
	mux.HandleFunc("/api/login", h.handleLogin)
	mux.HandleFunc("/api/history", h.handleHistory)
	mux.HandleFunc("/api/categories", h.handleCategories)
	mux.HandleFunc("/api/admin/questions", h.handleAdminQuestions)
	mux.HandleFunc("/api/admin/export", h.handleExport)
	mux.HandleFunc("/api/admin/import", h.handleImport)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Admin    bool   `json:"admin"`
}

func (h *APIHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	user, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{Username: user.Username, Email: user.Email, Admin: user.Admin})
}

func (h *APIHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	user, err := h.accounts.Login(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Username: user.Username, Email: user.Email, Admin: user.Admin})
}

func (h *APIHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("user")
	if username == "" {
		username = domain.GuestUser
	}
	entries, err := h.history.List(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *APIHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.bank.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *APIHandler) handleAdminQuestions(w http.ResponseWriter, r *http.Request) {
	if !h.adminGate(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		questions, err := h.bank.Search(r.Context(), r.URL.Query().Get("category"), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, questions)
	case http.MethodPost, http.MethodPut:
		var q domain.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		saved, err := h.bank.Save(r.Context(), q)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	case http.MethodDelete:
		if err := h.bank.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *APIHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	if !h.adminGate(w, r) {
		return
	}
	data, err := h.bank.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="questions.json"`)
	_, _ = w.Write(data)
}

func (h *APIHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	if !h.adminGate(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	merged, err := h.bank.Import(r.Context(), data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"merged": merged})
}

func (h *APIHandler) adminGate(w http.ResponseWriter, r *http.Request) bool {
	if err := h.accounts.CheckAdminKey(r.Header.Get("X-Admin-Key")); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrAdminKeyRejected):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrQuestionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuestion), errors.Is(err, domain.ErrInvalidImport):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
