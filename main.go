package main

import (
	"context"

	"github.com/go-i2p/datemon/lib/cli"
	"github.com/go-i2p/datemon/lib/util/signals"
	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

func main() {
	go signals.Handle()
	signals.RegisterReloadHandler(func() {
		log.Info("SIGHUP ignored: configuration is fixed at startup")
	})
	ctx, stop := signals.WithInterrupt(context.Background())
	defer stop()

	cli.Execute(ctx)
}
