package repository

import (
	"context"
	"errors"

	"restpki-batch/internal/domain/entity"
)

// SignatureRepository opens and closes PAdES signature processes on REST PKI
type SignatureRepository interface {
	// Start uploads the PDF and visual representation and returns the process token
	Start(ctx context.Context, documentID string, req *entity.PadesStartRequest) (string, error)

	// Complete finalizes the process identified by token and returns the signed PDF
	Complete(ctx context.Context, token string) (*entity.SignatureResult, error)
}

// PresetRepository fetches the positioning presets computed by REST PKI
type PresetRepository interface {
	// Footnote returns the footnote layout. pageNumber and rows are sent only when non-zero.
	Footnote(ctx context.Context, pageNumber, rows int) (*entity.VisualPositioning, error)

	// NewPage returns the layout that places signatures on an appended page
	NewPage(ctx context.Context) (*entity.VisualPositioning, error)
}

// ErrTokenNotFound is returned by TokenLedger.Consume for unknown, expired or already used tokens
var ErrTokenNotFound = errors.New("signature token not found")

// TokenLedger remembers which document each issued token belongs to
type TokenLedger interface {
	Register(ctx context.Context, token, documentID string) error

	// Consume returns the document bound to token and forgets the token
	Consume(ctx context.Context, token string) (string, error)
}

// APILogRepository stores outbound REST PKI calls
type APILogRepository interface {
	Save(ctx context.Context, log *entity.APILog) error
	List(ctx context.Context, limit int) ([]entity.APILog, error)
}

// SignatureRecordRepository stores one audit row per completed signature
type SignatureRecordRepository interface {
	Save(ctx context.Context, record *entity.SignatureRecord) error
}
