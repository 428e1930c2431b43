package main

import (
	"github.com/trellis-labs/trellis/backend/internal/server"
	"github.com/trellis-labs/trellis/backend/internal/util"
	"github.com/trellis-labs/trellis/backend/pkg/logger"
	"github.com/trellis-labs/trellis/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.New(console.Params{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
