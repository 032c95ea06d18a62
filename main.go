// Command pmx is a terminal project planning workspace.
package main

import "github.com/theirongolddev/pmx/cmd"

func main() {
	cmd.Execute()
}
