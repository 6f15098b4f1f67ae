package http

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quizzone/internal/app"
	"quizzone/internal/domain"
	"quizzone/internal/infra/memory"
	"quizzone/internal/quiz"
)

type wsMessage struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(history app.HistoryStore) *app.QuizService {
	loader := memory.NewStaticBankLoader(map[string][]domain.Question{
		"general": {
			{Text: "What is 2 + 2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5"}, Difficulty: domain.DifficultyEasy},
		},
	})
	generator := quiz.NewGenerator(loader, []string{"general"}, quiz.WithLogger(quiet()))
	return app.NewQuizService(memory.NewGameStore(), generator,
		app.WithHistory(history),
		app.WithLogger(quiet()),
	)
}

func newTestServer(t *testing.T, service *app.QuizService) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewRouter(service, []string{"general"}, "https://quiz.example", quiet()))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, gameID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws/" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": typ, "payload": payload}))
}

// readUntil skips messages until one of type want arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want string) wsMessage {
	t.Helper()
	for range 10 {
		var msg wsMessage
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
	}
	t.Fatalf("no %q message received", want)
	return wsMessage{}
}

func TestWebSocketQuizFlow(t *testing.T) {
	history := memory.NewHistoryStore(10)
	server := newTestServer(t, newTestService(history))
	conn := dial(t, server, "table-1")

	initial := readUntil(t, conn, "state")
	assert.Equal(t, "table-1", initial.Payload["gameId"])
	assert.Equal(t, "idle", initial.Payload["state"])

	send(t, conn, "add_player", map[string]any{"name": "Ola"})
	roster := readUntil(t, conn, "roster")
	require.Len(t, roster.Payload["players"], 1)

	send(t, conn, "configure", map[string]any{"theme": "general", "difficulty": "easy", "questionCount": 1})
	readUntil(t, conn, "settings")

	send(t, conn, "start", nil)
	question := readUntil(t, conn, "question")
	q := question.Payload["question"].(map[string]any)
	assert.Equal(t, "What is 2 + 2?", q["text"])
	assert.NotContains(t, q, "correctIndex")

	send(t, conn, "answer", map[string]any{"player": "Ola", "option": 0})
	answer := readUntil(t, conn, "answer")
	assert.Equal(t, true, answer.Payload["allAnswered"])

	send(t, conn, "check", nil)
	scoreboard := readUntil(t, conn, "scoreboard")
	q = scoreboard.Payload["question"].(map[string]any)
	assert.Contains(t, q, "correctIndex")

	send(t, conn, "next", nil)
	results := readUntil(t, conn, "results")
	assert.Equal(t, "finished", results.Payload["state"])
	require.Len(t, results.Payload["results"], 1)

	require.Eventually(t, func() bool {
		recent, _ := history.RecentResults(context.Background(), 10)
		return len(recent) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWebSocketReportsErrors(t *testing.T) {
	server := newTestServer(t, newTestService(app.NopHistory{}))
	conn := dial(t, server, "table-2")
	readUntil(t, conn, "state")

	send(t, conn, "dance", nil)
	msg := readUntil(t, conn, "error")
	assert.Equal(t, "unsupported message type", msg.Payload["message"])

	send(t, conn, "add_player", nil)
	msg = readUntil(t, conn, "error")
	assert.Equal(t, "invalid payload", msg.Payload["message"])

	send(t, conn, "start", nil)
	msg = readUntil(t, conn, "error")
	assert.Equal(t, domain.ErrNoPlayers.Error(), msg.Payload["message"])

	send(t, conn, "check", nil)
	msg = readUntil(t, conn, "error")
	assert.Contains(t, msg.Payload["message"], domain.ErrInvalidTransition.Error())
}

func TestWebSocketBroadcastsToEveryConnection(t *testing.T) {
	server := newTestServer(t, newTestService(app.NopHistory{}))
	host := dial(t, server, "table-3")
	readUntil(t, host, "state")
	screen := dial(t, server, "table-3")
	readUntil(t, screen, "state")

	send(t, host, "add_player", map[string]any{"name": "Kari"})

	readUntil(t, host, "roster")
	msg := readUntil(t, screen, "roster")
	players := msg.Payload["players"].([]any)
	require.Len(t, players, 1)
	assert.Equal(t, "Kari", players[0].(map[string]any)["name"])
}
