package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"restpki-batch/internal/domain/entity"
	"restpki-batch/internal/domain/repository"
	"restpki-batch/internal/infrastructure/httpclient"
)

const (
	padesSignaturesPath = "Api/PadesSignatures"
	presetsPath         = "Api/PadesVisualPositioningPresets"
)

// Wire models of the REST PKI PAdES API
type padesStartRequestModel struct {
	PdfToSign            []byte                       `json:"pdfToSign"`
	SignaturePolicyID    string                       `json:"signaturePolicyId"`
	SecurityContextID    string                       `json:"securityContextId"`
	VisualRepresentation *entity.VisualRepresentation `json:"visualRepresentation,omitempty"`
}

type padesStartResponseModel struct {
	Token string `json:"token"`
}

type padesFinalizeResponseModel struct {
	SignedPdf   []byte                  `json:"signedPdf"`
	Certificate *entity.CertificateInfo `json:"certificate"`
}

type restPkiRepository struct {
	client httpclient.HTTPClient
	logger *zap.Logger
}

func NewRestPkiRepository(client httpclient.HTTPClient, logger *zap.Logger) repository.SignatureRepository {
	return &restPkiRepository{
		client: client,
		logger: logger,
	}
}

func (r *restPkiRepository) Start(ctx context.Context, documentID string, req *entity.PadesStartRequest) (string, error) {
	body := &padesStartRequestModel{
		PdfToSign:            req.PdfToSign,
		SignaturePolicyID:    req.SignaturePolicyID,
		SecurityContextID:    req.SecurityContextID,
		VisualRepresentation: req.VisualRepresentation,
	}

	var response padesStartResponseModel
	reqCtx := &httpclient.RequestContext{DocumentID: documentID}
	if err := r.client.Post(ctx, reqCtx, padesSignaturesPath, body, &response); err != nil {
		return "", fmt.Errorf("failed to start PAdES signature: %w", err)
	}
	if response.Token == "" {
		return "", fmt.Errorf("REST PKI returned an empty token")
	}

	r.logger.Info("PAdES signature started",
		zap.String("document_id", documentID),
		zap.Int("pdf_size_bytes", len(req.PdfToSign)),
	)

	return response.Token, nil
}

func (r *restPkiRepository) Complete(ctx context.Context, token string) (*entity.SignatureResult, error) {
	var response padesFinalizeResponseModel
	path := padesSignaturesPath + "/" + url.PathEscape(token) + "/Finalize"
	if err := r.client.Post(ctx, nil, path, nil, &response); err != nil {
		return nil, fmt.Errorf("failed to finalize PAdES signature: %w", err)
	}
	if len(response.SignedPdf) == 0 {
		return nil, fmt.Errorf("REST PKI returned an empty signed PDF")
	}

	return &entity.SignatureResult{
		SignedPdf:   response.SignedPdf,
		Certificate: response.Certificate,
	}, nil
}

type presetRepository struct {
	client httpclient.HTTPClient
}

func NewPresetRepository(client httpclient.HTTPClient) repository.PresetRepository {
	return &presetRepository{client: client}
}

func (r *presetRepository) Footnote(ctx context.Context, pageNumber, rows int) (*entity.VisualPositioning, error) {
	query := url.Values{}
	if pageNumber != 0 {
		query.Set("pageNumber", strconv.Itoa(pageNumber))
	}
	if rows != 0 {
		query.Set("rows", strconv.Itoa(rows))
	}
	path := presetsPath + "/Footnote"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var position entity.VisualPositioning
	if err := r.client.Get(ctx, nil, path, &position); err != nil {
		return nil, fmt.Errorf("failed to get footnote preset: %w", err)
	}
	return &position, nil
}

func (r *presetRepository) NewPage(ctx context.Context) (*entity.VisualPositioning, error) {
	var position entity.VisualPositioning
	if err := r.client.Get(ctx, nil, presetsPath+"/NewPage", &position); err != nil {
		return nil, fmt.Errorf("failed to get new page preset: %w", err)
	}
	return &position, nil
}
