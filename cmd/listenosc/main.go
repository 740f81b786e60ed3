// Command listenosc prints the OSC messages it receives. Point the bridge's osc.host/osc.port at it to
// watch the CUIA and mixer traffic without a Zynthian.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hypebeast/go-osc/osc"

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/devices"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/logging"
)

func main() {
	addr := flag.String("listen", "127.0.0.1:1370", "UDP address to listen for OSC messages on")
	only := flag.String("prefix", "/", "only print addresses starting with this prefix, e.g. /cuia")
	flag.Parse()

	log := logging.Get(logging.OSC_IN)
	dispatcher := devices.NewDispatcher()
	dispatcher.AddMsgHandler("/*", func(msg *osc.Message, _ []string) {
		if !strings.HasPrefix(msg.Address, *only) {
			return
		}
		fmt.Println(format(msg))
	})

	server := &osc.Server{
		Addr:       *addr,
		Dispatcher: dispatcher,
	}
	log.Info("Listening for OSC messages", "addr", *addr)
	if err := server.ListenAndServe(); err != nil {
		log.Error("Failed to start OSC server", "error", err)
		os.Exit(1)
	}
}

// format renders a message the way CUIA commands are written: name followed by its arguments.
func format(msg *osc.Message) string {
	var b strings.Builder
	b.WriteString(msg.Address)
	for _, arg := range msg.Arguments {
		fmt.Fprintf(&b, " %v", arg)
	}
	return b.String()
}
