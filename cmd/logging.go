package cmd

import (
	"github.com/urfave/cli"

	"github.com/aaalloc/sviet/log"
)

var logger = log.New("sviet")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
