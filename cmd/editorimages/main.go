package main

import "github.com/nfrund/editorimages/cmd/editorimages/cmd"

func main() {
	cmd.Execute()
}
