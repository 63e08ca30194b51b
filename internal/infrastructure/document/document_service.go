package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"restpki-batch/internal/config"
)

// ErrDocumentNotFound is returned when the requested NN.pdf is missing
var ErrDocumentNotFound = errors.New("document not found")

// ErrStampUnavailable is returned when the stamp image cannot be read
var ErrStampUnavailable = errors.New("stamp image unavailable")

// DocumentService handles document file operations
type DocumentService interface {
	// ReadDocument returns the bytes of {documents_dir}/{id}.pdf
	ReadDocument(id string) ([]byte, error)

	// ReadStamp returns the bytes of the configured stamp image
	ReadStamp() ([]byte, error)

	// SaveSigned writes content under a fresh unique name in the output folder
	// and returns that name
	SaveSigned(content []byte) (filename string, err error)

	// GetDocumentsPath returns the folder the inputs are read from
	GetDocumentsPath() string

	// GetOutputPath returns the folder signed files are written to
	GetOutputPath() string
}

type documentService struct {
	config *config.DocumentConfig
	logger *zap.Logger
}

func NewDocumentService(cfg *config.Config, logger *zap.Logger) (DocumentService, error) {
	svc := &documentService{
		config: &cfg.Document,
		logger: logger,
	}

	// Output folder is served statically, it must exist before the server starts
	if err := os.MkdirAll(svc.GetOutputPath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", svc.GetOutputPath(), err)
	}

	logger.Info("Document service initialized",
		zap.String("documents_folder", svc.GetDocumentsPath()),
		zap.String("stamp_path", cfg.Document.StampPath),
		zap.String("output_folder", svc.GetOutputPath()),
	)

	return svc, nil
}

func (s *documentService) GetDocumentsPath() string {
	return filepath.Clean(s.config.DocumentsDir)
}

func (s *documentService) GetOutputPath() string {
	return filepath.Clean(s.config.OutputDir)
}

func (s *documentService) ReadDocument(id string) ([]byte, error) {
	filePath := filepath.Join(s.GetDocumentsPath(), id+".pdf")

	content, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, filePath)
		}
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}

	s.logger.Info("Document loaded successfully",
		zap.String("document_id", id),
		zap.String("path", filePath),
		zap.Int("size_bytes", len(content)),
	)

	return content, nil
}

func (s *documentService) ReadStamp() ([]byte, error) {
	content, err := os.ReadFile(s.config.StampPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStampUnavailable, err)
	}
	return content, nil
}

func (s *documentService) SaveSigned(content []byte) (string, error) {
	filename := uuid.New().String() + ".pdf"
	filePath := filepath.Join(s.GetOutputPath(), filename)

	if err := os.MkdirAll(s.GetOutputPath(), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// O_EXCL so an existing file is never overwritten
	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create signed file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("failed to write signed file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to write signed file: %w", err)
	}

	s.logger.Info("Signed document saved",
		zap.String("filename", filename),
		zap.String("path", filePath),
		zap.Int("size_bytes", len(content)),
	)

	return filename, nil
}
