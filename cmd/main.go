package main

import (
	"go.uber.org/fx"

	"restpki-batch/internal/service"
)

func main() {
	fx.New(service.Options(), service.EventLogger).Run()
}
