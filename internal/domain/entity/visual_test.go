package entity

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func validText() *VisualText {
	return &VisualText{Text: "Signed by {{signerName}}", IncludeSigningTime: true, HorizontalAlign: AlignLeft}
}

func validImage() *VisualImage {
	return &VisualImage{
		Resource:        ResourceContent{Content: []byte{0x89, 'P', 'N', 'G'}, MimeType: "image/png"},
		Opacity:         50,
		HorizontalAlign: AlignRight,
	}
}

func manualPosition() *VisualPositioning {
	return &VisualPositioning{
		PageNumber:       0,
		MeasurementUnits: UnitsCentimeters,
		Manual:           &VisualRectangle{Left: Float(2.54), Bottom: Float(2.54), Width: Float(5), Height: Float(3)},
	}
}

func TestNewVisualRepresentationValid(t *testing.T) {
	vr, err := NewVisualRepresentation(validText(), validImage(), manualPosition())
	require.NoError(t, err)
	require.NotNil(t, vr.Position.Manual)
}

func TestNewVisualRepresentationRejects(t *testing.T) {
	cases := map[string]func() (*VisualText, *VisualImage, *VisualPositioning){
		"no overlay": func() (*VisualText, *VisualImage, *VisualPositioning) {
			return nil, nil, manualPosition()
		},
		"no position": func() (*VisualText, *VisualImage, *VisualPositioning) {
			return validText(), validImage(), nil
		},
		"empty text": func() (*VisualText, *VisualImage, *VisualPositioning) {
			txt := validText()
			txt.Text = ""
			return txt, validImage(), manualPosition()
		},
		"text centered": func() (*VisualText, *VisualImage, *VisualPositioning) {
			txt := validText()
			txt.HorizontalAlign = AlignCenter
			return txt, validImage(), manualPosition()
		},
		"opacity over 100": func() (*VisualText, *VisualImage, *VisualPositioning) {
			img := validImage()
			img.Opacity = 101
			return validText(), img, manualPosition()
		},
		"negative opacity": func() (*VisualText, *VisualImage, *VisualPositioning) {
			img := validImage()
			img.Opacity = -1
			return validText(), img, manualPosition()
		},
		"missing mime type": func() (*VisualText, *VisualImage, *VisualPositioning) {
			img := validImage()
			img.Resource.MimeType = ""
			return validText(), img, manualPosition()
		},
		"empty image": func() (*VisualText, *VisualImage, *VisualPositioning) {
			img := validImage()
			img.Resource.Content = nil
			return validText(), img, manualPosition()
		},
		"unknown units": func() (*VisualText, *VisualImage, *VisualPositioning) {
			pos := manualPosition()
			pos.MeasurementUnits = "Inches"
			return validText(), validImage(), pos
		},
		"manual and auto": func() (*VisualText, *VisualImage, *VisualPositioning) {
			pos := manualPosition()
			pos.Auto = &VisualAutoPositioning{}
			return validText(), validImage(), pos
		},
		"manual without height": func() (*VisualText, *VisualImage, *VisualPositioning) {
			pos := manualPosition()
			pos.Manual.Height = nil
			return validText(), validImage(), pos
		},
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewVisualRepresentation(build())
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidVisualRepresentation))
		})
	}
}

func TestValidateContainer(t *testing.T) {
	ok := VisualRectangle{Left: Float(2.54), Right: Float(2.54), Bottom: Float(2.54), Height: Float(12.31)}
	require.NoError(t, ok.ValidateContainer())

	underHorizontal := VisualRectangle{Left: Float(2.54), Bottom: Float(2.54), Height: Float(12.31)}
	require.Error(t, underHorizontal.ValidateContainer())

	underVertical := VisualRectangle{Left: Float(2.54), Right: Float(2.54), Top: Float(1)}
	require.Error(t, underVertical.ValidateContainer())

	over := VisualRectangle{Left: Float(1), Right: Float(1), Width: Float(10), Top: Float(1), Height: Float(3)}
	require.Error(t, over.ValidateContainer())

	negative := VisualRectangle{Left: Float(-1), Right: Float(1), Top: Float(1), Height: Float(3)}
	require.Error(t, negative.ValidateContainer())
}

func TestAutoPositioningValidate(t *testing.T) {
	auto := VisualAutoPositioning{
		Container:              VisualRectangle{Left: Float(2.54), Right: Float(2.54), Bottom: Float(2.54), Height: Float(12.31)},
		SignatureRectangleSize: RectangleSize{Width: 5, Height: 3},
		RowSpacing:             1,
	}
	require.NoError(t, auto.Validate())

	auto.RowSpacing = -1
	require.Error(t, auto.Validate())

	auto.RowSpacing = 1
	auto.SignatureRectangleSize.Width = 0
	require.Error(t, auto.Validate())
}

func TestCloneDoesNotAlias(t *testing.T) {
	pos := &VisualPositioning{
		PageNumber:       -1,
		MeasurementUnits: UnitsCentimeters,
		Auto: &VisualAutoPositioning{
			Container:              VisualRectangle{Left: Float(1), Right: Float(1), Bottom: Float(1), Height: Float(3)},
			SignatureRectangleSize: RectangleSize{Width: 7, Height: 3},
		},
	}

	cp := pos.Clone()
	*cp.Auto.Container.Left = 9
	cp.Auto.SignatureRectangleSize.Width = 1

	require.Equal(t, 1.0, *pos.Auto.Container.Left)
	require.Equal(t, 7.0, pos.Auto.SignatureRectangleSize.Width)
	require.Nil(t, (*VisualPositioning)(nil).Clone())
}

func TestVisualRepresentationWireFormat(t *testing.T) {
	vr, err := NewVisualRepresentation(validText(), validImage(), manualPosition())
	require.NoError(t, err)

	raw, err := json.Marshal(vr)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	image := decoded["image"].(map[string]interface{})
	resource := image["resource"].(map[string]interface{})
	require.Equal(t, "iVBORw==", resource["content"])
	require.Equal(t, "image/png", resource["mimeType"])

	position := decoded["position"].(map[string]interface{})
	require.Equal(t, float64(0), position["pageNumber"])
	require.Equal(t, UnitsCentimeters, position["measurementUnits"])
	require.NotContains(t, position, "auto")

	manual := position["manual"].(map[string]interface{})
	require.Equal(t, 2.54, manual["left"])
	require.NotContains(t, manual, "right")
}
