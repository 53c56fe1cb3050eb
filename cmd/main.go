package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mailbridge/internal/interface/controllers"
)

func main() {
	// SIGINT и SIGTERM отменяют контекст: процесс Ghostscript завершается, временные файлы удаляются
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor := NewApplicationProcessor()
	cli := controllers.NewCLIController(processor.Open, os.Stdout)

	err := cli.RootCommand().ExecuteContext(ctx)
	if shutdownErr := processor.Shutdown(); err == nil {
		err = shutdownErr
	}
	if err != nil {
		stop()
		fatal(err)
	}
}
