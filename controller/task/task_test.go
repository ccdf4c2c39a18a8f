package task

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"checklistapp/middleware"
	"checklistapp/model"
	"checklistapp/repository"
	"checklistapp/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
)

func setupRouter() (*gin.Engine, *repository.TaskRepository, *store.MemoryStore) {
	gin.SetMode(gin.TestMode)
	s := store.NewMemoryStore()
	tasks := repository.NewTaskRepository(s)
	r := gin.New()
	signedIn := func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "m1")
		c.Next()
	}
	TaskController(r, signedIn, tasks)
	return r, tasks, s
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var createBody = map[string]interface{}{
	"title":           "Inspect site",
	"dueDate":         "2024-05-10T00:00:00Z",
	"priority":        "alta",
	"assignedTo":      "user",
	"assignedUserUID": "u1",
	"checklistItems": []map[string]interface{}{
		{"text": "Helmet"},
		{"text": "Reading", "type": "number"},
	},
}

func TestCreateAndGetTask(t *testing.T) {
	r, _, _ := setupRouter()

	w := do(r, http.MethodPost, "/tasks", createBody)
	assert.Equal(t, http.StatusCreated, w.Code)
	var created model.Task
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "m1", created.CreatedBy)
	assert.Equal(t, 2, len(created.ChecklistItems))
	assert.Equal(t, model.ItemCheckbox, created.ChecklistItems[0].Type)
	assert.NotEqual(t, "", created.ChecklistItems[0].ID)

	w = do(r, http.MethodGet, "/tasks/"+created.UID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var got model.Task
	json.Unmarshal(w.Body.Bytes(), &got)
	assert.Equal(t, "Inspect site", got.Title)
}

func TestCreateTaskRejectsBadInput(t *testing.T) {
	r, _, _ := setupRouter()

	w := do(r, http.MethodPost, "/tasks", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := map[string]interface{}{
		"title":      "x",
		"dueDate":    "2024-05-10T00:00:00Z",
		"priority":   "urgent",
		"assignedTo": "user",
	}
	w = do(r, http.MethodPost, "/tasks", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Alert struct {
			Kind   string            `json:"kind"`
			Fields map[string]string `json:"fields"`
		} `json:"alert"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	assert.Equal(t, "validation", body.Alert.Kind)
	assert.NotEqual(t, "", body.Alert.Fields["Priority"])
}

func TestTaskNotFound(t *testing.T) {
	r, _, _ := setupRouter()
	w := do(r, http.MethodGet, "/tasks/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChecklistRoutes(t *testing.T) {
	r, tasks, _ := setupRouter()
	w := do(r, http.MethodPost, "/tasks", createBody)
	var created model.Task
	json.Unmarshal(w.Body.Bytes(), &created)
	base := "/tasks/" + created.UID

	w = do(r, http.MethodPost, base+"/checklist", map[string]interface{}{"text": "Sign off", "type": "signature"})
	assert.Equal(t, http.StatusCreated, w.Code)
	var added model.ChecklistItem
	json.Unmarshal(w.Body.Bytes(), &added)

	w = do(r, http.MethodPatch, base+"/checklist/"+added.ID, map[string]interface{}{"completed": true, "signatureUri": "gs://sig"})
	assert.Equal(t, http.StatusOK, w.Code)

	ids := []string{added.ID, created.ChecklistItems[1].ID, created.ChecklistItems[0].ID}
	w = do(r, http.MethodPut, base+"/checklist", map[string]interface{}{"itemIds": ids})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, base+"/checklist/"+created.ChecklistItems[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, base+"/checklist/"+created.ChecklistItems[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	got, err := tasks.GetByID(t.Context(), created.UID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(got.ChecklistItems))
	assert.Equal(t, added.ID, got.ChecklistItems[0].ID)
	assert.Equal(t, true, got.ChecklistItems[0].Completed)
	assert.Equal(t, "gs://sig", *got.ChecklistItems[0].SignatureURI)
}

func TestSetCompletedAndDelete(t *testing.T) {
	r, tasks, s := setupRouter()
	w := do(r, http.MethodPost, "/tasks", createBody)
	var created model.Task
	json.Unmarshal(w.Body.Bytes(), &created)

	w = do(r, http.MethodPut, "/tasks/"+created.UID+"/completed", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/tasks/"+created.UID+"/completed", map[string]interface{}{"completed": true})
	assert.Equal(t, http.StatusOK, w.Code)
	got, _ := tasks.GetByID(t.Context(), created.UID)
	assert.Equal(t, true, got.Completed)

	s.SetOffline(true)
	w = do(r, http.MethodDelete, "/tasks/"+created.UID, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	s.SetOffline(false)
	w = do(r, http.MethodDelete, "/tasks/"+created.UID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
