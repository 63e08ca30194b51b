package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"restpki-batch/internal/domain/entity"
	"restpki-batch/internal/domain/repository"
	"restpki-batch/internal/infrastructure/document"
)

type fakeDocuments struct {
	mu      sync.Mutex
	docs    map[string][]byte
	stamp   []byte
	saved   map[string][]byte
	saveErr error
	seq     int
}

func newFakeDocuments(first, last int) *fakeDocuments {
	docs := map[string][]byte{}
	for _, id := range entity.DocumentIDs(first, last) {
		docs[id] = []byte("%PDF-" + id)
	}
	return &fakeDocuments{docs: docs, stamp: []byte{0x89, 'P', 'N', 'G'}, saved: map[string][]byte{}}
}

func (f *fakeDocuments) ReadDocument(id string) ([]byte, error) {
	content, ok := f.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s.pdf", document.ErrDocumentNotFound, id)
	}
	return content, nil
}

func (f *fakeDocuments) ReadStamp() ([]byte, error) {
	if f.stamp == nil {
		return nil, document.ErrStampUnavailable
	}
	return f.stamp, nil
}

func (f *fakeDocuments) SaveSigned(content []byte) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	name := fmt.Sprintf("%08d-signed.pdf", f.seq)
	f.saved[name] = content
	return name, nil
}

func (f *fakeDocuments) GetDocumentsPath() string { return "static" }
func (f *fakeDocuments) GetOutputPath() string    { return "app-data" }

// fakePresets hands out the same pointers on every call, like a caching repository
type fakePresets struct {
	footnote *entity.VisualPositioning
	newPage  *entity.VisualPositioning
	err      error
}

func newFakePresets() *fakePresets {
	return &fakePresets{
		footnote: &entity.VisualPositioning{
			PageNumber:       -1,
			MeasurementUnits: entity.UnitsCentimeters,
			Auto: &entity.VisualAutoPositioning{
				Container: entity.VisualRectangle{
					Left:   entity.Float(1.5),
					Right:  entity.Float(1.5),
					Bottom: entity.Float(1),
					Height: entity.Float(4.94),
				},
				SignatureRectangleSize: entity.RectangleSize{Width: 8, Height: 4.94},
			},
		},
		newPage: &entity.VisualPositioning{
			PageNumber:       0,
			MeasurementUnits: entity.UnitsCentimeters,
			Auto: &entity.VisualAutoPositioning{
				Container: entity.VisualRectangle{
					Left:   entity.Float(1),
					Right:  entity.Float(1),
					Top:    entity.Float(1),
					Bottom: entity.Float(1),
				},
				SignatureRectangleSize: entity.RectangleSize{Width: 7, Height: 4},
			},
		},
	}
}

func (f *fakePresets) Footnote(context.Context, int, int) (*entity.VisualPositioning, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.footnote, nil
}

func (f *fakePresets) NewPage(context.Context) (*entity.VisualPositioning, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.newPage, nil
}

// fakeSigner mimics REST PKI: tokens are single use and finalize returns the uploaded PDF
type fakeSigner struct {
	mu          sync.Mutex
	seq         int
	pending     map[string][]byte
	lastRequest *entity.PadesStartRequest
	startErr    error
	completeErr error
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{pending: map[string][]byte{}}
}

func (f *fakeSigner) Start(_ context.Context, _ string, req *entity.PadesStartRequest) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token := fmt.Sprintf("%s%03d", strings.Repeat("t", entity.TokenLength-3), f.seq)
	f.pending[token] = req.PdfToSign
	f.lastRequest = req
	return token, nil
}

func (f *fakeSigner) Complete(_ context.Context, token string) (*entity.SignatureResult, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	pdf, ok := f.pending[token]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	delete(f.pending, token)
	return &entity.SignatureResult{
		SignedPdf: append([]byte("signed:"), pdf...),
		Certificate: &entity.CertificateInfo{
			SubjectName:  entity.Name{CommonName: "Alan Mathison Turing"},
			EmailAddress: "turing@example.com",
			PkiBrazil:    &entity.PkiBrazilInfo{CPF: "123.456.789-00"},
		},
	}, nil
}

type memoryLedger struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{tokens: map[string]string{}}
}

func (l *memoryLedger) Register(_ context.Context, token, documentID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens[token] = documentID
	return nil
}

func (l *memoryLedger) Consume(_ context.Context, token string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.tokens[token]
	if !ok {
		return "", repository.ErrTokenNotFound
	}
	delete(l.tokens, token)
	return id, nil
}

type memoryRecords struct {
	mu      sync.Mutex
	records []*entity.SignatureRecord
	err     error
}

func (r *memoryRecords) Save(_ context.Context, record *entity.SignatureRecord) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}
