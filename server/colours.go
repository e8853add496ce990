package server

const (
	green  = "\033[32m"
	blue   = "\033[34m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	gray   = "\033[90m"

	resetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":    green,
	"POST":   blue,
	"PUT":    cyan,
	"DELETE": yellow,
}
