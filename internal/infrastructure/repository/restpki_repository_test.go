package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"restpki-batch/internal/domain/entity"
	"restpki-batch/internal/infrastructure/httpclient"
)

type call struct {
	method string
	path   string
	reqCtx *httpclient.RequestContext
	body   []byte
}

// fakeClient answers every call with a canned JSON body
type fakeClient struct {
	calls    []call
	response string
	err      error
}

func (f *fakeClient) record(method, path string, reqCtx *httpclient.RequestContext, body interface{}, result interface{}) error {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	f.calls = append(f.calls, call{method: method, path: path, reqCtx: reqCtx, body: raw})
	if f.err != nil {
		return f.err
	}
	if result != nil && f.response != "" {
		return json.Unmarshal([]byte(f.response), result)
	}
	return nil
}

func (f *fakeClient) Get(_ context.Context, reqCtx *httpclient.RequestContext, path string, result interface{}) error {
	return f.record("GET", path, reqCtx, nil, result)
}

func (f *fakeClient) Post(_ context.Context, reqCtx *httpclient.RequestContext, path string, body interface{}, result interface{}) error {
	return f.record("POST", path, reqCtx, body, result)
}

func TestStartSendsWireModel(t *testing.T) {
	client := &fakeClient{response: `{"token":"tok"}`}
	repo := NewRestPkiRepository(client, zap.NewNop())

	token, err := repo.Start(context.Background(), "03", &entity.PadesStartRequest{
		PdfToSign:         []byte("%PDF"),
		SignaturePolicyID: "policy",
		SecurityContextID: "context",
		VisualRepresentation: &entity.VisualRepresentation{
			Position: &entity.VisualPositioning{PageNumber: 0, MeasurementUnits: entity.UnitsCentimeters},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "tok", token)

	require.Len(t, client.calls, 1)
	require.Equal(t, "POST", client.calls[0].method)
	require.Equal(t, "Api/PadesSignatures", client.calls[0].path)
	require.Equal(t, "03", client.calls[0].reqCtx.DocumentID)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(client.calls[0].body, &sent))
	require.Equal(t, "JVBERg==", sent["pdfToSign"])
	require.Equal(t, "policy", sent["signaturePolicyId"])
	require.Equal(t, "context", sent["securityContextId"])
	require.Contains(t, sent, "visualRepresentation")
}

func TestStartRejectsEmptyToken(t *testing.T) {
	repo := NewRestPkiRepository(&fakeClient{response: `{}`}, zap.NewNop())
	_, err := repo.Start(context.Background(), "01", &entity.PadesStartRequest{})
	require.Error(t, err)
}

func TestStartKeepsRestErrorInChain(t *testing.T) {
	restErr := &httpclient.RestError{StatusCode: 422, Code: "SecurityContextNotFound"}
	repo := NewRestPkiRepository(&fakeClient{err: restErr}, zap.NewNop())

	_, err := repo.Start(context.Background(), "01", &entity.PadesStartRequest{})
	got, ok := httpclient.AsRestError(err)
	require.True(t, ok)
	require.Equal(t, "SecurityContextNotFound", got.Code)
}

func TestCompleteDecodesSignedPdf(t *testing.T) {
	client := &fakeClient{response: `{"signedPdf":"JVBERi1zaWduZWQ=","certificate":{"subjectName":{"commonName":"Alan Mathison Turing"},"emailAddress":"turing@example.com","pkiBrazil":{"cpf":"123.456.789-00"}}}`}
	repo := NewRestPkiRepository(client, zap.NewNop())

	result, err := repo.Complete(context.Background(), "abc_DEF-123")
	require.NoError(t, err)
	require.Equal(t, "%PDF-signed", string(result.SignedPdf))
	require.Equal(t, "Alan Mathison Turing", result.Certificate.SubjectName.CommonName)
	require.Equal(t, "123.456.789-00", result.Certificate.NationalID())
	require.Equal(t, "Api/PadesSignatures/abc_DEF-123/Finalize", client.calls[0].path)
	require.Nil(t, client.calls[0].body)
}

func TestCompleteRejectsEmptyPdf(t *testing.T) {
	repo := NewRestPkiRepository(&fakeClient{response: `{"signedPdf":""}`}, zap.NewNop())
	_, err := repo.Complete(context.Background(), "tok")
	require.Error(t, err)
}

func TestFootnotePresetQuery(t *testing.T) {
	client := &fakeClient{response: `{"pageNumber":-1,"measurementUnits":"Centimeters","auto":{"container":{"left":1.5,"right":1.5,"bottom":1,"height":4.94},"signatureRectangleSize":{"width":8,"height":4.94},"rowSpacing":0}}`}
	repo := NewPresetRepository(client)

	position, err := repo.Footnote(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, "Api/PadesVisualPositioningPresets/Footnote", client.calls[0].path)
	require.Equal(t, -1, position.PageNumber)
	require.NotNil(t, position.Auto)
	require.Equal(t, 1.5, *position.Auto.Container.Left)

	_, err = repo.Footnote(context.Background(), 2, 3)
	require.NoError(t, err)
	require.Equal(t, "Api/PadesVisualPositioningPresets/Footnote?pageNumber=2&rows=3", client.calls[1].path)
}

func TestNewPagePreset(t *testing.T) {
	client := &fakeClient{response: `{"pageNumber":0,"measurementUnits":"Centimeters","auto":{"container":{"left":1,"right":1,"top":1,"bottom":1},"signatureRectangleSize":{"width":7,"height":4},"rowSpacing":0}}`}
	position, err := NewPresetRepository(client).NewPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Api/PadesVisualPositioningPresets/NewPage", client.calls[0].path)
	require.Equal(t, 0, position.PageNumber)

	_, err = NewPresetRepository(&fakeClient{err: errors.New("boom")}).NewPage(context.Background())
	require.Error(t, err)
}
