package main

import "github.com/curlew-http/curlew/apps/curlewfmt/cmd"

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
