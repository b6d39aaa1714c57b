package bot

import (
	"fmt"

	"github.com/akab00m/dupclean/duplib"
)

// botLogger adapts duplib.Logger to tgbotapi.BotLogger.
type botLogger struct {
	logger duplib.Logger
}

func (b botLogger) Println(v ...interface{}) {
	b.logger.Debug(fmt.Sprint(v...))
}

func (b botLogger) Printf(format string, v ...interface{}) {
	b.logger.Printf(format, v...)
}
