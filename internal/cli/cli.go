package cli

import "github.com/alecthomas/kong"

type CLI struct {
	Run       Run              `kong:"cmd,help='Run bot.'"`
	SimpleRun SimpleRun        `kong:"cmd,help='Run bot without config file.'"`
	Health    Health           `kong:"cmd,help='Check bot health via status endpoint.'"`
	Version   kong.VersionFlag `kong:"help='Print version.',short='v'"`
}
