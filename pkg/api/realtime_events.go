package api

import (
	"encoding/json"

	"github.com/fadliRafidan/smart-lock-api/pkg/api/resource"
	"github.com/fadliRafidan/smart-lock-api/pkg/notify"
	"github.com/fadliRafidan/smart-lock-api/pkg/notify/natsio"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// realtimeEventsHandler streams every published transition to a websocket
// client until the client goes away.
func (h *Handler) realtimeEventsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			log.Error("api: failed to upgrade to websocket: ", err)
			return nil
		}
		defer conn.Close()

		msgCh := make(chan *nats.Msg, 64)
		sub, err := h.nc.ChanSubscribe(natsio.TransitionWildcard(h.baseSubject), msgCh)
		if err != nil {
			log.Error("api: failed to subscribe to transitions: ", err)
			return nil
		}
		defer sub.Unsubscribe()

		// Clients only ever send control frames; a read error means they left
		closedCh := make(chan struct{})
		go func() {
			defer close(closedCh)
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closedCh:
				return nil
			case msg := <-msgCh:
				tr := &notify.Transition{}
				if err := json.Unmarshal(msg.Data, tr); err != nil {
					log.Warn("api: dropping malformed transition: ", err)
					continue
				}

				out, _ := json.Marshal(resource.NewRealtimeEvent(tr.DeviceID, "transition", tr))
				if err := wsutil.WriteServerMessage(conn, ws.OpText, out); err != nil {
					log.Error("api: failed to send realtime event: ", err)
					return nil
				}
			}
		}
	}
}
