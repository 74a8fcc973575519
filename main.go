/*
Copyright © 2025 Mardromus
*/
package main

import "github.com/mardromus/scrumdinger/cmd"

func main() {
	cmd.Execute()
}
