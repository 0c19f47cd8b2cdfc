package main

import (
	"refuel/cmd/refuel/commands"
	"refuel/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
