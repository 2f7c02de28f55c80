package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeLobbyNotFound     = 2001
	ErrCodeLobbyFull         = 2002
	ErrCodeDuplicateLobby    = 2003
	ErrCodeGameStarted       = 2004 // 游戏已开始
	ErrCodeNotHost           = 3001
	ErrCodeNotEnoughPlayers  = 3002
	ErrCodeInvalidPhase      = 3003
	ErrCodeAlreadyDecided    = 3004
	ErrCodePlayerNotFound    = 3005
	ErrCodeReconnectFailed   = 4001
	ErrCodeSessionReplaced   = 4002 // 身份已被新连接接管
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "Unknown error",
	ErrCodeInvalidMsg:        "Invalid message",
	ErrCodeRateLimit:         "Too many requests",
	ErrCodeLobbyNotFound:     "Lobby not found",
	ErrCodeLobbyFull:         "Lobby is full",
	ErrCodeDuplicateLobby:    "Lobby already exists",
	ErrCodeGameStarted:       "Game already started",
	ErrCodeNotHost:           "Only the host can start the game",
	ErrCodeNotEnoughPlayers:  "Not enough players to start",
	ErrCodeInvalidPhase:      "Action not allowed in the current phase",
	ErrCodeAlreadyDecided:    "You have already kept your hand",
	ErrCodePlayerNotFound:    "You are not in this lobby",
	ErrCodeReconnectFailed:   "Reconnect failed",
	ErrCodeSessionReplaced:   "Session resumed on another connection",
	ErrCodeServerMaintenance: "Server is under maintenance",
}
