// Command mooring translates docker-compose descriptors into systemd units.
package main

import "github.com/cameronsjo/mooring/internal/cmd"

func main() {
	cmd.Execute()
}
