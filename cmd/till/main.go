// Command till is a single-user inventory and point-of-sale tool.
package main

import "github.com/mesh-intelligence/till/internal/cli"

func main() {
	cli.Execute()
}
