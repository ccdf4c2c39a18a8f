package view

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"checklistapp/middleware"
	"checklistapp/model"
	"checklistapp/repository"
	"checklistapp/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/gorilla/websocket"
)

func setupRouter(t *testing.T) (*gin.Engine, Repositories) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := store.NewMemoryStore()
	repos := Repositories{
		Tasks: repository.NewTaskRepository(s),
		Teams: repository.NewTeamRepository(s),
		Users: repository.NewUserRepository(s),
	}
	r := gin.New()
	signedIn := func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "u1")
		c.Next()
	}
	ViewController(r, signedIn, repos, DefaultLiveSettings())
	return r, repos
}

func seedTask(t *testing.T, repos Repositories, title string) model.Task {
	t.Helper()
	task, err := repos.Tasks.Create(context.Background(), model.Task{
		Title:           title,
		DueDate:         time.Now().AddDate(0, 0, 1),
		Priority:        model.PriorityHigh,
		AssignedTo:      model.AssignUser,
		AssignedUserUID: "u1",
		CreatedBy:       "m1",
		ChecklistItems:  []model.ChecklistItem{{Text: "Helmet"}},
	})
	assert.Equal(t, nil, err)
	return task
}

func TestGetView(t *testing.T) {
	r, repos := setupRouter(t)
	seedTask(t, repos, "one")
	seedTask(t, repos, "two")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/assigned", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		View string       `json:"view"`
		Data []model.Task `json:"data"`
	}
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "assigned", body.View)
	assert.Equal(t, 2, len(body.Data))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.Contains(w.Body.String(), "worker-home"))
}

type message struct {
	Type       string          `json:"type"`
	View       string          `json:"view"`
	Data       json.RawMessage `json:"data"`
	MutationID string          `json:"mutationId"`
	RequestID  string          `json:"requestId"`
	Alert      *struct {
		Kind string `json:"kind"`
	} `json:"alert"`
}

func dial(t *testing.T, r *gin.Engine, view string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/views/" + view
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

// next reads messages until one matches.
func next(t *testing.T, ws *websocket.Conn, match func(message) bool) message {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg message
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func pendingCount(msg message) int {
	var tasks []model.Task
	json.Unmarshal(msg.Data, &tasks)
	return len(tasks)
}

func TestLiveViewTracksStore(t *testing.T) {
	r, repos := setupRouter(t)
	seedTask(t, repos, "one")
	ws := dial(t, r, "pending")

	next(t, ws, func(m message) bool { return m.Type == "connected" })
	first := next(t, ws, func(m message) bool { return m.Type == "view" })
	assert.Equal(t, 1, pendingCount(first))

	seedTask(t, repos, "two")
	next(t, ws, func(m message) bool { return m.Type == "view" && pendingCount(m) == 2 })
}

func TestLiveViewMutation(t *testing.T) {
	r, repos := setupRouter(t)
	task := seedTask(t, repos, "one")
	ws := dial(t, r, "pending")
	next(t, ws, func(m message) bool { return m.Type == "view" })

	err := ws.WriteJSON(map[string]string{"requestId": "r1", "op": "toggle_task", "taskId": task.UID})
	assert.Equal(t, nil, err)
	ack := next(t, ws, func(m message) bool { return m.Type == "ack" })
	assert.Equal(t, "r1", ack.RequestID)
	assert.NotEqual(t, "", ack.MutationID)
	next(t, ws, func(m message) bool { return m.Type == "view" && pendingCount(m) == 0 })

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		got, _ := repos.Tasks.GetByID(context.Background(), task.UID)
		if got.Completed {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("toggle was not persisted")
}

func TestLiveViewRejectsBadRequests(t *testing.T) {
	r, repos := setupRouter(t)
	task := seedTask(t, repos, "one")
	ws := dial(t, r, "pending")
	next(t, ws, func(m message) bool { return m.Type == "view" })

	ws.WriteJSON(map[string]string{"requestId": "r1", "op": "explode", "taskId": task.UID})
	alert := next(t, ws, func(m message) bool { return m.Type == "alert" })
	assert.Equal(t, "r1", alert.RequestID)
	assert.Equal(t, "validation", alert.Alert.Kind)

	ws.WriteJSON(map[string]string{"requestId": "r2", "op": "add_item", "taskId": task.UID})
	alert = next(t, ws, func(m message) bool { return m.Type == "alert" })
	assert.Equal(t, "r2", alert.RequestID)
	assert.Equal(t, "validation", alert.Alert.Kind)

	ws.WriteJSON(map[string]string{"requestId": "r3", "op": "toggle_task", "taskId": "missing"})
	alert = next(t, ws, func(m message) bool { return m.Type == "alert" })
	assert.Equal(t, "r3", alert.RequestID)
	assert.Equal(t, "not_found", alert.Alert.Kind)
}

func TestLiveViewWithoutTasksRejectsMutations(t *testing.T) {
	r, _ := setupRouter(t)
	ws := dial(t, r, "my-teams")
	next(t, ws, func(m message) bool { return m.Type == "view" })

	ws.WriteJSON(map[string]string{"requestId": "r1", "op": "toggle_task", "taskId": "t1"})
	alert := next(t, ws, func(m message) bool { return m.Type == "alert" })
	assert.Equal(t, "r1", alert.RequestID)
}
