package main

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/exp/slog"

	"github.com/roberto5g/mini-authorizer/authorizer"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout))

	config := authorizer.DefaultConfig()
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		config.HTTPAddr = addr
	}
	if addr := os.Getenv("ISO8583_ADDR"); addr != "" {
		config.ISO8583Addr = addr
	}

	app := authorizer.NewApp(logger, config)
	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	app.Shutdown()
}
