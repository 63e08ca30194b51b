package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"restpki-batch/internal/domain/entity"
	"restpki-batch/internal/domain/repository"
	"restpki-batch/internal/infrastructure/database"
)

type signatureRecordRepository struct {
	db     *database.Database
	logger *zap.Logger
}

func NewSignatureRecordRepository(db *database.Database, logger *zap.Logger) repository.SignatureRecordRepository {
	return &signatureRecordRepository{
		db:     db,
		logger: logger,
	}
}

func (r *signatureRecordRepository) Save(ctx context.Context, record *entity.SignatureRecord) error {
	if r.db == nil {
		return nil
	}

	query := `
		INSERT INTO signature_records (document_id, filename, signer_name, signer_email, national_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.DB.QueryRowContext(ctx, query,
		record.DocumentID,
		record.Filename,
		record.SignerName,
		record.SignerEmail,
		record.NationalID,
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to save signature record: %w", err)
	}

	r.logger.Info("Signature record saved",
		zap.Int64("id", record.ID),
		zap.String("document_id", record.DocumentID),
		zap.String("filename", record.Filename),
	)

	return nil
}
