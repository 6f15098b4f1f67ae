package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"quizzone/internal/app"
	"quizzone/internal/domain"
)

// API serves the read-mostly REST endpoints.
type API struct {
	service *app.QuizService
	themes  []string
	log     *slog.Logger
}

func NewAPI(service *app.QuizService, themes []string, log *slog.Logger) *API {
	return &API{service: service, themes: themes, log: log}
}

type themesResponse struct {
	Themes []string `json:"themes"`
}

type createGameResponse struct {
	ID   string          `json:"id"`
	Game domain.GameView `json:"game"`
}

type topPlayerResponse struct {
	Found  bool              `json:"found"`
	Player *domain.TopPlayer `json:"player,omitempty"`
}

type playerStatsResponse struct {
	Found bool                `json:"found"`
	Stats *domain.PlayerStats `json:"stats,omitempty"`
}

func (a *API) Themes(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	themes := append([]string{domain.ThemeMixed}, a.themes...)
	writeJSON(w, http.StatusOK, themesResponse{Themes: themes})
}

func (a *API) CreateGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	view, err := a.service.CreateGame(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.log.Info("game created", "game", view.GameID)
	writeJSON(w, http.StatusCreated, createGameResponse{ID: view.GameID, Game: view})
}

func (a *API) Game(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	view, err := a.service.View(r.Context(), ps.ByName("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Results returns the final ranking once a game has finished.
func (a *API) Results(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	results, err := a.service.Results(r.Context(), ps.ByName("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) History(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	results, err := a.service.History(r.Context(), r.URL.Query().Get("theme"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if results == nil {
		results = []domain.QuizResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) TopPlayer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	top, ok, err := a.service.TopPlayer(r.Context(), r.URL.Query().Get("theme"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	resp := topPlayerResponse{Found: ok}
	if ok {
		resp.Player = &top
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) PlayerStats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	stats, ok, err := a.service.PlayerStats(r.Context(), ps.ByName("name"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	resp := playerStatsResponse{Found: ok}
	if ok {
		resp.Stats = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, domain.ErrInvalidQuestionCount),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrDuplicatePlayer),
		errors.Is(err, domain.ErrEmptyPlayerName),
		errors.Is(err, domain.ErrUnknownPlayer):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrQuizInProgress),
		errors.Is(err, domain.ErrStartInProgress),
		errors.Is(err, domain.ErrStartAborted),
		errors.Is(err, domain.ErrNoPlayers),
		errors.Is(err, domain.ErrEmptyQuiz):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoQuestionsAvailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
