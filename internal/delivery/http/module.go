package http

import (
	"go.uber.org/fx"

	"restpki-batch/internal/delivery/http/handler"
	"restpki-batch/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewBatchSignatureHandler,
		handler.NewHealthHandler,
		handler.NewLogHandler,
		router.NewRouter,
	),
)
