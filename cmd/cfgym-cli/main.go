package main

import (
	"cfgym-backend/cmd/cfgym-cli/commands"
	"cfgym-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
