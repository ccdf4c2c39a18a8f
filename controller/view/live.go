package view

import (
	"context"
	"errors"
	"net/http"
	"time"

	"checklistapp/dto"
	"checklistapp/middleware"
	"checklistapp/model"
	"checklistapp/optimistic"
	"checklistapp/repository"
	"checklistapp/services"
	"checklistapp/subscription"
	"checklistapp/views"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const sendBufferSize = 32

var errNoTasks = errors.New("this view does not hold tasks")

type LiveSettings struct {
	WriteTimeout time.Duration
	PingTimeout  time.Duration
	ReadTimeout  time.Duration
	// Rollback restores local values of failed mutations.
	Rollback bool
}

func DefaultLiveSettings() LiveSettings {
	return LiveSettings{
		WriteTimeout: 10 * time.Second,
		PingTimeout:  30 * time.Second,
		ReadTimeout:  90 * time.Second,
		Rollback:     true,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// screen is one live view: its own subscriptions, local state and
// dispatcher, torn down when the socket closes.
type screen struct {
	name     string
	view     views.View
	me       string
	query    string
	ctx      context.Context
	send     chan dto.ViewMessage
	consumer *subscription.Consumer

	tasks     *subscription.Slot[model.Task]
	teams     *subscription.Slot[model.Team]
	users     *subscription.Slot[model.User]
	mutations *optimistic.TaskMutations
}

// LiveView streams a view over a websocket, recomputed on every change, and
// accepts optimistic task mutations from the client.
func LiveView(c *gin.Context, repos Repositories, settings LiveSettings) {
	name := c.Param("name")
	v, err := views.Lookup(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		glog.Infof("[live]upgrade %s: %s\n", name, err)
		return
	}
	defer ws.Close()

	dispatcher := subscription.NewDispatcher()
	defer dispatcher.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	s := &screen{
		name:  name,
		view:  v,
		me:    middleware.UserID(c),
		query: c.Query("q"),
		ctx:   ctx,
		send:  make(chan dto.ViewMessage, sendBufferSize),
	}
	s.consumer = subscription.NewConsumer("live "+name, dispatcher, s.render, s.alert)
	if v.Needs&views.Tasks != 0 {
		s.tasks = subscription.Watch[model.Task](s.consumer, repos.Tasks.Subscribe)
		s.mutations = optimistic.NewTaskMutations(repos.Tasks,
			optimistic.SliceLocal[model.Task]{State: s.tasks, Key: model.Task.Key},
			s.consumer,
			optimistic.Options{
				Rollback: settings.Rollback,
				OnChange: s.render,
				OnFailed: s.failed,
			},
		)
	}
	if v.Needs&views.Teams != 0 {
		s.teams = subscription.Watch[model.Team](s.consumer, repos.Teams.Subscribe)
	}
	if v.Needs&views.Users != 0 {
		s.users = subscription.Watch[model.User](s.consumer, repos.Users.Subscribe)
	}
	defer s.consumer.Close()

	s.push(dto.ViewMessage{Type: dto.MessageConnected, View: name})
	if err := s.consumer.Start(ctx); err != nil {
		s.push(dto.ViewMessage{Type: dto.MessageAlert, View: name, Alert: services.Describe(err)})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writeLoop(gctx, ws, s.send, settings)
	})
	g.Go(func() error {
		return readLoop(gctx, ws, s, settings)
	})
	if err := g.Wait(); err != nil {
		glog.V(1).Infof("[live]%s closed: %s\n", name, err)
	}
}

// push queues a message. It gives up when the socket is gone.
func (s *screen) push(msg dto.ViewMessage) {
	select {
	case s.send <- msg:
	case <-s.ctx.Done():
	}
}

func (s *screen) loaded() bool {
	return (s.tasks == nil || s.tasks.Loaded()) &&
		(s.teams == nil || s.teams.Loaded()) &&
		(s.users == nil || s.users.Loaded())
}

// render recomputes the view from the latest value of each collection. It
// waits until every collection has arrived once.
func (s *screen) render() {
	if !s.loaded() {
		return
	}
	in := views.Input{Me: s.me, Query: s.query, Now: time.Now()}
	if s.tasks != nil {
		in.Tasks = s.tasks.Get()
	}
	if s.teams != nil {
		in.Teams = s.teams.Get()
	}
	if s.users != nil {
		in.Users = s.users.Get()
	}
	s.push(dto.ViewMessage{Type: dto.MessageView, View: s.name, Data: s.view.Compute(in)})
}

func (s *screen) alert(err error) {
	s.push(dto.ViewMessage{Type: dto.MessageAlert, View: s.name, Alert: services.Describe(err)})
}

func missing(field string) error {
	return &repository.ValidationError{Fields: map[string]string{field: "is required"}}
}

func (s *screen) failed(m optimistic.Mutation) {
	s.push(dto.ViewMessage{Type: dto.MessageAlert, View: s.name, MutationID: m.ID, Alert: services.Describe(m.Err)})
}

// apply runs on the dispatcher.
func (s *screen) apply(req dto.MutationRequest) (string, error) {
	if s.mutations == nil {
		return "", errNoTasks
	}
	m := s.mutations
	switch req.Op {
	case "toggle_task":
		return m.ToggleCompleted(s.ctx, req.TaskID)
	case "update_task":
		if req.Patch == nil {
			return "", missing("patch")
		}
		return m.Update(s.ctx, req.TaskID, *req.Patch)
	case "toggle_item":
		return m.ToggleItem(s.ctx, req.TaskID, req.ItemID)
	case "edit_item":
		if req.Edit == nil {
			return "", missing("edit")
		}
		return m.EditItem(s.ctx, req.TaskID, req.ItemID, req.Edit.Apply)
	case "add_item":
		if req.Item == nil {
			return "", missing("item")
		}
		return m.AddItem(s.ctx, req.TaskID, req.Item.Item())
	case "remove_item":
		return m.RemoveItem(s.ctx, req.TaskID, req.ItemID)
	case "reorder_items":
		return m.Reorder(s.ctx, req.TaskID, req.ItemIDs)
	}
	return "", missing("op")
}
