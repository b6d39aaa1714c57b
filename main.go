// dupclean is a Telegram bot which deletes repeated content in channels
// and groups.
//
// It remembers the last messages of every active chat and removes a new
// message if the same content (text, photo, video, sticker and so on) was
// posted there recently, no matter if it was forwarded or not.
package main

import (
	"runtime/debug"

	"github.com/akab00m/dupclean/internal/cli"
	"github.com/alecthomas/kong"
)

var version = "dev" // has to be set by ldflags

func main() {
	if buildInfo, ok := debug.ReadBuildInfo(); ok && version == "dev" {
		if buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
			version = buildInfo.Main.Version
		}
	}

	cliInst := &cli.CLI{}
	ctx := kong.Parse(cliInst, kong.Vars{
		"version": version,
	})

	ctx.FatalIfErrorf(ctx.Run(cliInst, version))
}
