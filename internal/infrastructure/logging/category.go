package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Game            Category = "Game"
	Realtime        Category = "Realtime"
	Mongo           Category = "Mongo"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// RequestResponse
	Api SubCategory = "Api"

	// Game
	RoomLifecycle SubCategory = "RoomLifecycle"
	TurnFlow      SubCategory = "TurnFlow"
	Reconnect     SubCategory = "Reconnect"
	Quiz          SubCategory = "Quiz"
	Persistence   SubCategory = "Persistence"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	RoomCode     ExtraKey = "RoomCode"
	Seat         ExtraKey = "Seat"
	UserId       ExtraKey = "UserId"
	Phase        ExtraKey = "Phase"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
)
