package main

import (
	"campusnet-client/cmd/campusnet-cli/commands"
	"campusnet-client/lib/telemetry"
	"campusnet-client/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "campusnet-cli")
	telemetry.InitSlog()
	commands.ExecuteContext(ctx)
}
