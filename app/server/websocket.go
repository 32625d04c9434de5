package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/simulation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SimulateWSHandler streams simulation progress over a websocket, when
// path is "/simulate". The client sends one Request message; events then
// arrive in emission order until a terminal done or error. Closing the
// socket cancels the run at its next suspension point.
func (s *Server) SimulateWSHandler(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		logrus.Warnf("ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	var request simulation.Request
	if err := conn.ReadJSON(&request); err != nil {
		logrus.Warnf("ws request error: %v", err)
		conn.WriteJSON(simulation.Event{Type: simulation.EventError, Message: "bad request message"})
		return
	}

	params, err := request.Validate()
	if err != nil {
		conn.WriteJSON(simulation.Event{Type: simulation.EventError, Message: err.Error()})
		return
	}

	driver, err := simulation.NewDriver(params, s.prices, s.universe, s.store, s.eventBuffer)
	if err != nil {
		conn.WriteJSON(simulation.Event{Type: simulation.EventError, Message: err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	// the read pump only watches for the client going away
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	logrus.Infof("simulate stream start: %s %s ~ %s", params.Strategy, params.StartDate, params.EndDate)
	go driver.Run(ctx)

	for event := range driver.Events() {
		if err := conn.WriteJSON(event); err != nil {
			logrus.Warnf("ws write error: %v", err)
			cancel()
			return
		}
	}
}
