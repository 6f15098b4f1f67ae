package http

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"quizzone/internal/app"
	"quizzone/internal/lib/logger"
)

// NewRouter registers the REST, QR and websocket routes.
func NewRouter(service *app.QuizService, themes []string, publicURL string, log *slog.Logger) http.Handler {
	log = logger.OrDefault(log)
	api := NewAPI(service, themes, log)
	ws := NewWSHandler(service, log)

	mux := httprouter.New()
	mux.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.GET("/api/themes", api.Themes)
	mux.POST("/api/games", api.CreateGame)
	mux.GET("/api/games/:id", api.Game)
	mux.GET("/api/games/:id/results", api.Results)
	mux.GET("/api/games/:id/qr.png", qrHandler(publicURL))
	mux.GET("/api/history", api.History)
	mux.GET("/api/stats/top", api.TopPlayer)
	mux.GET("/api/players/:name/stats", api.PlayerStats)
	mux.GET("/ws/:id", ws.ServeWS)
	return mux
}
