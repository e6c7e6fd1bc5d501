/*
Copyright © 2026 The vgrab Authors
*/
package main

import "github.com/vgrab/vgrab/cmd"

func main() {
	cmd.Execute()
}
