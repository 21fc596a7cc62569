package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgivc/causelist/internal/app"
)

func main() {
	cfgFileName := flag.String("c", "config.yml", "Path to config file")
	envFileName := flag.String("e", ".env", "Path to env file")
	flag.Parse()

	app := app.New(*cfgFileName, *envFileName)
	app.Start()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	fmt.Println("Received termination signal. Shutting down...")

	app.Stop()
	fmt.Println("done")
}
