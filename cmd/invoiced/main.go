package main

import (
	"github.com/guidebooker/invoice-service/internal/config"
	"github.com/guidebooker/invoice-service/internal/invoice"
	"github.com/guidebooker/invoice-service/internal/observability"
	"github.com/guidebooker/invoice-service/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		invoice.Module,
		server.Module,
	)
	app.Run()
}
