// ====================================
// File: cmd/tokenlists/main.go
// ====================================
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version подставляется при сборке через -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Завершение по Ctrl+C / SIGTERM отменяет команду до записи файлов
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &App{version: version}
	if err := app.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
