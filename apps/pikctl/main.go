package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/uptpik/pikweb/core/session"
	backendsvc "github.com/uptpik/pikweb/services/backend"
	logsvc "github.com/uptpik/pikweb/services/logger"
	"github.com/uptpik/pikweb/storage/kvstore"
)

func main() {
	confDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatal(err)
	}
	tokens := kvstore.NewFile(filepath.Join(confDir, "pikctl", "credentials.json"))

	api := backendsvc.NewClient()
	logger := logsvc.NewConsoleLogger(log.New(os.Stderr, "pikctl: ", 0))
	logger.Enable(false) // the CLI reports through its own output

	cli := &commandLine{
		mgr: session.NewManager(api, tokens, logger),
		api: api,
		out: os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "pikctl: %v\n", err)
		}
		os.Exit(1)
	}
}
