package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Scrimzay/tacticsim/internal/world"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func HandleWebsocket(broadcaster *Broadcaster, room *Room, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		ctx := c.Request.Context()

		broadcaster.Register(conn)

		// Set by "join"; every game action needs it
		playerID := ""

		defer func() {
			if playerID != "" {
				room.Leave(playerID)
				broadcaster.BroadcastState()
				logger.Info("player disconnected", zap.String("player", playerID))
			}
			broadcaster.Unregister(conn)
		}()

		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}

			var base struct {
				Action string `json:"action"`
			}
			if err := json.Unmarshal(msg, &base); err != nil {
				logger.Debug("bad message", zap.Error(err))
				broadcaster.SendTo(conn, rejected("", "malformed message"))
				continue
			}

			if base.Action != "join" && base.Action != "inspect" && playerID == "" {
				broadcaster.SendTo(conn, rejected(base.Action, "join first"))
				continue
			}

			switch base.Action {
			case "join":
				var join JoinAction
				if err := json.Unmarshal(msg, &join); err != nil {
					broadcaster.SendTo(conn, rejected(base.Action, err.Error()))
					continue
				}
				if playerID != "" {
					broadcaster.SendTo(conn, rejected(base.Action, "already joined"))
					continue
				}

				player := room.Join(join.Name)
				playerID = player.ID
				logger.Info("player connected", zap.String("player", playerID), zap.String("name", player.Name))
				broadcaster.SendTo(conn, JoinedMessage{Type: "joined", Player: player})
				broadcaster.BroadcastState()

			case "spawn":
				var spawn SpawnAction
				if err := json.Unmarshal(msg, &spawn); err != nil {
					broadcaster.SendTo(conn, rejected(base.Action, err.Error()))
					continue
				}

				if !room.Spawn(ctx, playerID, world.Point{X: spawn.X, Y: spawn.Y}, spawn.Unit) {
					broadcaster.SendTo(conn, rejected(base.Action, "cannot spawn there"))
					continue
				}
				broadcaster.BroadcastState()

			case "move":
				var move MoveAction
				if err := json.Unmarshal(msg, &move); err != nil {
					broadcaster.SendTo(conn, rejected(base.Action, err.Error()))
					continue
				}

				if !room.Move(ctx, playerID, move.From, move.To) {
					broadcaster.SendTo(conn, rejected(base.Action, "cannot move there"))
					continue
				}
				broadcaster.BroadcastState()

			case "rotate":
				var rotate RotateAction
				if err := json.Unmarshal(msg, &rotate); err != nil {
					broadcaster.SendTo(conn, rejected(base.Action, err.Error()))
					continue
				}

				if !room.Rotate(ctx, playerID, world.Point{X: rotate.X, Y: rotate.Y}, rotate.Facing) {
					broadcaster.SendTo(conn, rejected(base.Action, "cannot rotate"))
					continue
				}
				broadcaster.BroadcastState()

			case "attack":
				var attack AttackAction
				if err := json.Unmarshal(msg, &attack); err != nil {
					broadcaster.SendTo(conn, rejected(base.Action, err.Error()))
					continue
				}

				res, ok := room.Attack(ctx, playerID, attack.From, attack.Target)
				if !ok {
					broadcaster.SendTo(conn, rejected(base.Action, "cannot attack that"))
					continue
				}
				broadcaster.Broadcast(EventsMessage{Type: "combat", Events: res.Events, Logs: res.Logs})
				broadcaster.BroadcastState()

			case "end_turn":
				res, ok := room.EndTurn(ctx, playerID)
				if !ok {
					broadcaster.SendTo(conn, rejected(base.Action, "not your turn"))
					continue
				}
				broadcaster.Broadcast(EventsMessage{Type: "morale", Events: res.Events, Logs: res.Logs})
				broadcaster.BroadcastState()

			case "reachable":
				var cell CellAction
				if err := json.Unmarshal(msg, &cell); err != nil {
					broadcaster.SendTo(conn, rejected(base.Action, err.Error()))
					continue
				}

				from := world.Point{X: cell.X, Y: cell.Y}
				broadcaster.SendTo(conn, ReachableMessage{Type: "reachable", From: from, Cells: room.Reachable(from)})

			case "inspect":
				var cell CellAction
				if err := json.Unmarshal(msg, &cell); err != nil {
					broadcaster.SendTo(conn, rejected(base.Action, err.Error()))
					continue
				}

				unit, tile, ok := room.Inspect(world.Point{X: cell.X, Y: cell.Y})
				if !ok {
					broadcaster.SendTo(conn, rejected(base.Action, "out of bounds"))
					continue
				}
				broadcaster.SendTo(conn, InspectMessage{Type: "inspect", X: cell.X, Y: cell.Y, Terrain: tile, Unit: unit})

			default:
				broadcaster.SendTo(conn, rejected(base.Action, "unknown action"))
			}
		}
	}
}
