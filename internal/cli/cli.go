package cli

import "github.com/alecthomas/kong"

type CLI struct {
	Run       Run              `kong:"cmd,help='Run benchmark server.'"`
	SimpleRun SimpleRun        `kong:"cmd,help='Run benchmark server without config file.'"`
	Receive   Receive          `kong:"cmd,help='Connect to benchmark server and count received bytes.'"`
	Health    Health           `kong:"cmd,help='Check server health via metrics endpoint.'"`
	Version   kong.VersionFlag `kong:"help='Print version.',short='v'"`
}
