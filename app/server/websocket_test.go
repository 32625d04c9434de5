package server_test

import (
	"net/http/httptest"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/Adarsh-S-Nair/zentari-sub000/app/simulation"
)

func (suite *WebTestSuite) dialSimulate(ts *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/simulate"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)
	return conn
}

func (suite *WebTestSuite) TestSimulateWSHandler() {
	ts := httptest.NewServer(suite.server.Mux())
	defer ts.Close()

	conn := suite.dialSimulate(ts)
	defer conn.Close()

	suite.Require().NoError(conn.WriteJSON(testRequest()))

	var dailies int
	for {
		var event simulation.Event
		suite.Require().NoError(conn.ReadJSON(&event))

		switch event.Type {
		case simulation.EventDaily:
			dailies++
		case simulation.EventError:
			suite.FailNowf("unexpected error event", "%s", event.Message)
		case simulation.EventDone:
			suite.Equal(10, dailies)
			suite.Require().NotNil(event.Summary)
			suite.NotEmpty(event.Summary.RunID)
			suite.Len(event.Summary.TradeHistory, 1)
			return
		}
	}
}

func (suite *WebTestSuite) TestSimulateWSHandlerBadParams() {
	ts := httptest.NewServer(suite.server.Mux())
	defer ts.Close()

	conn := suite.dialSimulate(ts)
	defer conn.Close()

	request := testRequest()
	request.TopN = 0
	suite.Require().NoError(conn.WriteJSON(request))

	var event simulation.Event
	suite.Require().NoError(conn.ReadJSON(&event))
	suite.Equal(simulation.EventError, event.Type)
	suite.Contains(event.Message, "top_n")
}
