package repository

import (
	"go.uber.org/fx"

	"restpki-batch/internal/infrastructure/httpclient"
)

var Module = fx.Module("repository",
	fx.Provide(NewRestPkiRepository),
	fx.Provide(NewPresetRepository),
	fx.Provide(NewTokenLedger),
	fx.Provide(NewSignatureRecordRepository),
	fx.Provide(
		fx.Annotate(
			NewAPILogRepository,
			fx.As(fx.Self()),
			fx.As(new(httpclient.APILogSaver)),
		),
	),
)
