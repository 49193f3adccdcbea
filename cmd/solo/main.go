package main

import (
	"github.com/alecthomas/kong"

	"github.com/subhaanfazeel/solo/cmd/solo/commands"
)

var version = "dev"

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("solo"),
		kong.Description("Terminal client for the solo habit server, with an offline caching agent."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&commands.Global{}, &cli))
}
