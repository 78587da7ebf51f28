package socket_io

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Lobera/services/redis"
	"Lobera/services/socket_io/handlers"
	socketio_types "Lobera/services/socket_io/types"
	socketio_utils "Lobera/services/socket_io/utils"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	// KEY: initialize the maps before the first connection lands
	sio.UserConnections = make(map[string]*socket.Socket)
	sio.UserGames = make(map[string]uint)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, username, userID := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			return
		}

		// Add connection to map
		(*socketio_types.SocketServer)(sio).AddConnection(username, client)

		fmt.Println("An individual just connected!: ", username)

		// Join the user to a room corresponding to a Lobera game
		client.On("join_game", handlers.HandleJoinGame(redisClient, client, db, username, userID, (*socketio_types.SocketServer)(sio)))

		// Leave the game room voluntarily
		client.On("leave_game", handlers.HandleLeaveGame(redisClient, client, username, (*socketio_types.SocketServer)(sio)))

		// Chat inside the game room (wolves-only at night)
		client.On("game_chat", handlers.HandleGameChat(redisClient, client, db, username, userID, (*socketio_types.SocketServer)(sio)))

		// Fetch the stored chat history
		client.On("get_chat_history", handlers.HandleGetChatHistory(redisClient, client, db, username, userID))

		// Current phase, round and remaining time
		client.On("get_phase_info", handlers.HandleGetPhaseInfo(redisClient, client, db, username, userID))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(redisClient, username, (*socketio_types.SocketServer)(sio)))
	})

	// Relay events published on game channels (by the API server and the
	// phase scheduler) into the corresponding socket.io rooms
	go sio.relayGameEvents(redisClient)

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}

// relayGameEvents forwards every envelope published on "game:*" channels to
// the socket.io room with the same name. The channel name IS the room name,
// so the scheduler process never needs a direct line to this server.
func (sio *MySocketServer) relayGameEvents(redisClient *redis.RedisClient) {
	pubsub := redisClient.PSubscribe("game:*")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		event, payload, err := redis.DecodeEvent(msg.Payload)
		if err != nil {
			fmt.Println("Error decoding game event:", err)
			continue
		}
		sio.Sio_server.To(socket.Room(msg.Channel)).Emit(event, payload)
	}
}
