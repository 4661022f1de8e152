package main

import (
	"github.com/cloudops/cloud-console-tool/cmd"
	"github.com/cloudops/cloud-console-tool/internal/logger"
)

func main() {
	defer logger.Sync()
	cmd.Execute()
}
