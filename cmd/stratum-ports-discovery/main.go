// Command stratum-ports-discovery prints Zabbix low-level discovery JSON for
// a comma-separated list of Stratum ports.
//
// Usage:
//
//	stratum-ports-discovery "3333,3334,443"
//
// Every numeric token becomes {"{#STRATUM.PORT}": "<port>"}; anything else
// is dropped. No network access is made. The argument is taken as data, so a
// list such as "-1,3333" is not mistaken for a flag.
package main

import (
	"fmt"
	"io"
	"os"

	"stratumprobe/output"
	"stratumprobe/port"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: stratum-ports-discovery PORTS")
	fmt.Fprintln(w, `  PORTS  comma-separated port list, e.g. "3333,3334,443"`)
}

func main() {
	args := os.Args[1:]
	if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
		usage(os.Stdout)
		return
	}
	if err := run(args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write discovery: %v\n", err)
		os.Exit(1)
	}
}

// run writes the discovery document for the first argument. Extra arguments
// are ignored; a missing one yields an empty list.
func run(args []string, w io.Writer) error {
	var spec string
	if len(args) > 0 {
		spec = args[0]
	}
	return output.WriteDiscovery(w, port.NewDiscovery(port.ParseDiscoveryList(spec)))
}
