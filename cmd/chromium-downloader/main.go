// Command chromium-downloader fetches the latest Chromium snapshot archive for this platform.
package main

import "github.com/oshokin/chromium-downloader/cmd/chromium-downloader/cmd"

func main() {
	cmd.Execute()
}
