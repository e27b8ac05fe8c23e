package domain

// Token marks which party occupies a cell. The zero value is an empty cell.
type Token string

const (
	Empty    Token = ""
	Player1  Token = "P1"
	Player2  Token = "P2"
	BotToken Token = "BOT"
)

const BotUsername = "bot"

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

// to represent the game status
type GameStatus string

const (
	StatusActive    GameStatus = "active"
	StatusWon       GameStatus = "won"
	StatusDraw      GameStatus = "draw"
	StatusForfeited GameStatus = "forfeited"
)

// reasons recorded on a finished game
const (
	ReasonConnectFour = "connect_four"
	ReasonDraw        = "draw"
	ReasonForfeit     = "forfeit"
)

// basic errors that can occur, all of them recoverable
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrSessionNotFound    Error = "game not found"
	ErrPlayerNotInSession Error = "username not in game"
	ErrNotAPlayer         Error = "not a player in this game"
	ErrNotYourTurn        Error = "not your turn"
	ErrInvalidMove        Error = "column full or invalid"
	ErrAlreadyPlaying     Error = "already in a game"
	ErrShuttingDown       Error = "server is shutting down"
)

// Move is a single recorded drop. Timestamp is unix milliseconds.
type Move struct {
	By        string `json:"by"`
	Column    int    `json:"column"`
	Timestamp int64  `json:"timestamp"`
}
