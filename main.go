// canvas-downloader mirrors the content of Canvas LMS courses to a local folder.
package main

import (
	"fmt"
	"os"

	"github.com/canvas-downloader/canvas-downloader/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
