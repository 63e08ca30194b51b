package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"restpki-batch/internal/config"
	"restpki-batch/internal/domain/entity"
	"restpki-batch/internal/domain/repository"
	"restpki-batch/internal/infrastructure/document"
	"restpki-batch/internal/infrastructure/httpclient"
	"restpki-batch/internal/infrastructure/metrics"
	"restpki-batch/pkg/apierrors"
)

const (
	outcomeOK    = "ok"
	stampOpacity = 50
)

type BatchSignatureUsecase interface {
	// ListDocuments returns the ids of the documents offered for signing
	ListDocuments() []string
	// Start opens a signature process for one document. preset 0 means the configured preset.
	Start(ctx context.Context, documentID string, preset int) (*entity.StartResult, error)
	// Complete finalizes the process identified by token and stores the signed PDF
	Complete(ctx context.Context, token string) (*entity.CompleteResult, error)
}

type batchSignatureUsecase struct {
	config     *config.Config
	docService document.DocumentService
	positions  PositionBuilder
	signatures repository.SignatureRepository
	ledger     repository.TokenLedger
	records    repository.SignatureRecordRepository
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewBatchSignatureUsecase(
	cfg *config.Config,
	docService document.DocumentService,
	positions PositionBuilder,
	signatures repository.SignatureRepository,
	ledger repository.TokenLedger,
	records repository.SignatureRecordRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) BatchSignatureUsecase {
	return &batchSignatureUsecase{
		config:     cfg,
		docService: docService,
		positions:  positions,
		signatures: signatures,
		ledger:     ledger,
		records:    records,
		metrics:    m,
		logger:     logger,
	}
}

func (u *batchSignatureUsecase) ListDocuments() []string {
	return entity.DocumentIDs(u.config.Signature.FirstDocument, u.config.Signature.LastDocument)
}

func (u *batchSignatureUsecase) Start(ctx context.Context, documentID string, preset int) (*entity.StartResult, error) {
	result, err := u.start(ctx, documentID, preset)
	if err != nil {
		u.metrics.IncSignature(metrics.StageStart, string(apierrors.CodeOf(err)))
		u.logger.Error("Failed to start signature",
			zap.String("document_id", documentID),
			zap.String("code", string(apierrors.CodeOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	u.metrics.IncSignature(metrics.StageStart, outcomeOK)
	return result, nil
}

func (u *batchSignatureUsecase) start(ctx context.Context, rawID string, preset int) (*entity.StartResult, error) {
	documentID, err := entity.ParseDocumentID(rawID, u.config.Signature.FirstDocument, u.config.Signature.LastDocument)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInvalidArgument, "invalid document id", err)
	}
	if preset == 0 {
		preset = u.config.Signature.PositionPreset
	}

	u.logger.Info("Starting signature",
		zap.String("document_id", documentID),
		zap.Int("position_preset", preset),
	)

	pdf, err := u.docService.ReadDocument(documentID)
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return nil, apierrors.Wrap(apierrors.CodeDocumentNotFound, "document "+documentID+" not found", err)
		}
		return nil, apierrors.Wrap(apierrors.CodeInternal, "failed to read document "+documentID, err)
	}

	stamp, err := u.docService.ReadStamp()
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeStampUnavailable, "stamp image unavailable", err)
	}

	position, err := u.positions.Build(ctx, preset)
	if err != nil {
		return nil, mapRemoteError(err, apierrors.CodeSignatureRejected, "failed to build visual position")
	}

	visual, err := entity.NewVisualRepresentation(
		&entity.VisualText{
			Text:               u.config.Signature.TextTemplate,
			IncludeSigningTime: true,
			HorizontalAlign:    entity.AlignLeft,
		},
		&entity.VisualImage{
			Resource: entity.ResourceContent{
				Content:  stamp,
				MimeType: u.config.Signature.StampMimeType,
			},
			Opacity:         stampOpacity,
			HorizontalAlign: entity.AlignRight,
		},
		position,
	)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInvalidVisualRepresentation, "invalid visual representation", err)
	}

	token, err := u.signatures.Start(ctx, documentID, &entity.PadesStartRequest{
		PdfToSign:            pdf,
		SignaturePolicyID:    u.config.Signature.PolicyID,
		SecurityContextID:    u.config.Signature.SecurityContextID,
		VisualRepresentation: visual,
	})
	if err != nil {
		return nil, mapRemoteError(err, apierrors.CodeSignatureRejected, "signature start failed for document "+documentID)
	}

	if err := u.ledger.Register(ctx, token, documentID); err != nil {
		return nil, apierrors.Wrap(apierrors.CodeInternal, "failed to register signature token", err)
	}

	u.logger.Info("Signature started",
		zap.String("document_id", documentID),
	)

	return &entity.StartResult{Token: token, DocumentID: documentID}, nil
}

func (u *batchSignatureUsecase) Complete(ctx context.Context, token string) (*entity.CompleteResult, error) {
	result, err := u.complete(ctx, token)
	if err != nil {
		u.metrics.IncSignature(metrics.StageComplete, string(apierrors.CodeOf(err)))
		u.logger.Error("Failed to complete signature",
			zap.String("code", string(apierrors.CodeOf(err))),
			zap.Error(err),
		)
		return nil, err
	}
	u.metrics.IncSignature(metrics.StageComplete, outcomeOK)
	return result, nil
}

func (u *batchSignatureUsecase) complete(ctx context.Context, token string) (*entity.CompleteResult, error) {
	if !entity.IsWellFormedToken(token) {
		return nil, apierrors.New(apierrors.CodeInvalidArgument, "malformed signature token")
	}

	documentID, err := u.ledger.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, apierrors.Wrap(apierrors.CodeTokenInvalid, "signature token is unknown, expired or already used", err)
		}
		return nil, apierrors.Wrap(apierrors.CodeInternal, "failed to look up signature token", err)
	}

	signed, err := u.signatures.Complete(ctx, token)
	if err != nil {
		if isTransient(err) {
			u.restoreToken(ctx, token, documentID)
		}
		return nil, mapRemoteError(err, apierrors.CodeTokenInvalid, "signature finalize failed")
	}

	filename, err := u.docService.SaveSigned(signed.SignedPdf)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.CodeOutputWriteFailed, "failed to store signed document", err)
	}

	u.saveRecord(ctx, documentID, filename, signed.Certificate)

	u.logger.Info("Signature completed",
		zap.String("document_id", documentID),
		zap.String("filename", filename),
	)

	return &entity.CompleteResult{
		Filename:   filename,
		DocumentID: documentID,
		Signer:     signed.Certificate,
	}, nil
}

// restoreToken puts back a token the service never got to finalize so the page can retry
func (u *batchSignatureUsecase) restoreToken(ctx context.Context, token, documentID string) {
	if err := u.ledger.Register(ctx, token, documentID); err != nil {
		u.logger.Warn("Failed to restore signature token",
			zap.String("document_id", documentID),
			zap.Error(err),
		)
	}
}

// isTransient reports whether REST PKI failed without deciding on the request
func isTransient(err error) bool {
	if restErr, ok := httpclient.AsRestError(err); ok {
		return restErr.StatusCode >= 500
	}
	return errors.Is(err, httpclient.ErrUnreachable)
}

// saveRecord stores the audit row; the signed file already exists so failures only log
func (u *batchSignatureUsecase) saveRecord(ctx context.Context, documentID, filename string, cert *entity.CertificateInfo) {
	record := &entity.SignatureRecord{
		DocumentID: documentID,
		Filename:   filename,
		NationalID: cert.NationalID(),
		CreatedAt:  time.Now(),
	}
	if cert != nil {
		record.SignerName = cert.SubjectName.CommonName
		record.SignerEmail = cert.EmailAddress
	}
	if err := u.records.Save(ctx, record); err != nil {
		u.logger.Warn("Failed to save signature record",
			zap.String("filename", filename),
			zap.Error(err),
		)
	}
}

// mapRemoteError classifies a REST PKI failure. rejected is the code used when the
// service refused the request with a 4xx or one of its own error codes.
func mapRemoteError(err error, rejected apierrors.Code, message string) error {
	if _, ok := apierrors.FromError(err); ok {
		return err
	}
	if restErr, ok := httpclient.AsRestError(err); ok {
		switch {
		case restErr.IsValidationError():
			return apierrors.Wrap(apierrors.CodeSignatureRejected, message, err)
		case restErr.IsClientError():
			return apierrors.Wrap(rejected, message, err)
		default:
			return apierrors.Wrap(apierrors.CodeServiceUnavailable, message, err)
		}
	}
	if errors.Is(err, httpclient.ErrUnreachable) {
		return apierrors.Wrap(apierrors.CodeServiceUnavailable, message, err)
	}
	return apierrors.Wrap(apierrors.CodeInternal, message, err)
}
