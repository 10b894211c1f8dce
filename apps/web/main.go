package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptpik/pikweb/apps/web/echoweb"
	"github.com/uptpik/pikweb/core"
	backendsvc "github.com/uptpik/pikweb/services/backend"
	logsvc "github.com/uptpik/pikweb/services/logger"
	"github.com/uptpik/pikweb/storage/kvstore"
)

func main() {
	std := log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if core.Conf.GetBool("debug") {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, os.Getenv("ENV"), core.Conf.GetString("serverAddr"))
	}

	// session store: redis in normal operation, in-memory when redis is not
	// reachable (local dev)
	sessions, err := kvstore.OpenRedis(
		core.Conf.GetString("redisURL"),
		core.Conf.GetDuration("sessionCookieMaxAge"),
	)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory sessions", err)
		sessions = kvstore.NewMemory()
	}

	app := echoweb.NewServer(&echoweb.Options{
		Addr:     core.Conf.GetString("serverAddr"),
		API:      backendsvc.NewClient(),
		Sessions: sessions,
		Logger:   logger,
	})

	go func() {
		if err := app.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server start failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		logger.Error("graceful shutdown failed", err)
	}
}
