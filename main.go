// zcbench measures how fast a server can push a fixed-size message to TCP
// clients with different send strategies: plain copies, vectorized writes
// and MSG_ZEROCOPY.
//
// A server side is started with run (a TOML config) or simple-run (command
// line only). A client side is receive: it reads the stream for a given
// time and prints a number of received bytes.
package main

import (
	"runtime/debug"

	"github.com/akab00m/zcbench/internal/cli"
	"github.com/alecthomas/kong"
)

var version = "dev" // has to be set by ldflags

func main() {
	cli := &cli.CLI{}
	ctx := kong.Parse(cli, kong.Vars{
		"version": getVersion(),
	})

	ctx.FatalIfErrorf(ctx.Run(cli, version))
}

func getVersion() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok || version != "dev" {
		return version
	}

	return buildInfo.Main.Version
}
