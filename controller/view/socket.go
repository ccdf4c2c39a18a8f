package view

import (
	"context"
	"time"

	"checklistapp/dto"
	"checklistapp/repository"
	"checklistapp/services"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

func writeLoop(ctx context.Context, ws *websocket.Conn, send <-chan dto.ViewMessage, settings LiveSettings) error {
	// closing unblocks the reader
	defer ws.Close()
	ping := time.NewTicker(settings.PingTimeout)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			ws.SetWriteDeadline(time.Now().Add(settings.WriteTimeout))
			ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return ctx.Err()
		case msg := <-send:
			ws.SetWriteDeadline(time.Now().Add(settings.WriteTimeout))
			if err := ws.WriteJSON(msg); err != nil {
				// a write deadline cannot be recovered
				return err
			}
			glog.V(2).Infof("[live]-> %s %s\n", msg.Type, msg.View)
		case <-ping.C:
			ws.SetWriteDeadline(time.Now().Add(settings.WriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func readLoop(ctx context.Context, ws *websocket.Conn, s *screen, settings LiveSettings) error {
	ws.SetReadDeadline(time.Now().Add(settings.ReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(settings.ReadTimeout))
	})
	for {
		var req dto.MutationRequest
		if err := ws.ReadJSON(&req); err != nil {
			return err
		}
		ws.SetReadDeadline(time.Now().Add(settings.ReadTimeout))

		if err := repository.Validate(req); err != nil {
			s.push(dto.ViewMessage{Type: dto.MessageAlert, View: s.name, RequestID: req.RequestID, Alert: services.Describe(err)})
			continue
		}
		s.consumer.Dispatch(func() {
			id, err := s.apply(req)
			if err != nil {
				s.push(dto.ViewMessage{Type: dto.MessageAlert, View: s.name, RequestID: req.RequestID, Alert: services.Describe(err)})
				return
			}
			s.push(dto.ViewMessage{Type: dto.MessageAck, View: s.name, RequestID: req.RequestID, MutationID: id})
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}
