package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"github.com/doeshing/unlp/internal/infrastructure/cli"
)

func main() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, cli.Options{Verbose: isVerbose()})
	stop()
	os.Exit(code)
}

func isVerbose() bool {
	v := os.Getenv("UNLP_DEBUG")
	return v == "1" || strings.EqualFold(v, "true")
}
