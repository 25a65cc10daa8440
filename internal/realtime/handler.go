package realtime

import (
	"net/http"

	"github.com/Odin94/Progeny-vtm-v5-character-creator-sub001/pkg/log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades HTTP → WS and starts the connection loops. The credential
// is checked before the upgrade: a bad or missing token is answered with a
// plain 401 and no websocket is ever established. Which check failed is not
// disclosed.
func Handler(
	reg *Registry,
	disp *Dispatcher,
	whoAmI func(*http.Request) (uuid.UUID, error),
) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := whoAmI(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Logger.Warn().Err(err).Msg("ws upgrade failed")
			return
		}

		log.Logger.Info().Str("user_id", uid.String()).Msg("sync connection opened")
		NewConn(uid, ws, reg, disp) // goroutines start inside NewConn
	}
}
