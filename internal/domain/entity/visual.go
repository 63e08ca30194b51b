package entity

import (
	"errors"
	"fmt"
)

// Horizontal and vertical alignments accepted by the signing service
const (
	AlignLeft   = "Left"
	AlignCenter = "Center"
	AlignRight  = "Right"
	AlignTop    = "Top"
	AlignBottom = "Bottom"
)

// Measurement units for a visual positioning
const (
	UnitsCentimeters = "Centimeters"
	UnitsPdfPoints   = "PdfPoints"
)

// ErrInvalidVisualRepresentation is wrapped by every Validate failure in this file.
var ErrInvalidVisualRepresentation = errors.New("invalid visual representation")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidVisualRepresentation, fmt.Sprintf(format, args...))
}

// Float returns a pointer to v, used for the optional rectangle fields.
func Float(v float64) *float64 {
	return &v
}

// VisualRepresentation describes the stamp drawn on the signed PDF
type VisualRepresentation struct {
	Text     *VisualText        `json:"text,omitempty"`
	Image    *VisualImage       `json:"image,omitempty"`
	Position *VisualPositioning `json:"position"`
}

// NewVisualRepresentation validates the parts and assembles them.
func NewVisualRepresentation(text *VisualText, image *VisualImage, position *VisualPositioning) (*VisualRepresentation, error) {
	vr := &VisualRepresentation{Text: text, Image: image, Position: position}
	if err := vr.Validate(); err != nil {
		return nil, err
	}
	return vr, nil
}

func (v *VisualRepresentation) Validate() error {
	if v.Text == nil && v.Image == nil {
		return invalidf("text or image is required")
	}
	if v.Text != nil {
		if err := v.Text.Validate(); err != nil {
			return err
		}
	}
	if v.Image != nil {
		if err := v.Image.Validate(); err != nil {
			return err
		}
	}
	if v.Position == nil {
		return invalidf("position is required")
	}
	return v.Position.Validate()
}

// VisualText is the text overlay. The tags {{signerName}} and {{signerNationalId}}
// are replaced by the service with data from the signer's certificate.
type VisualText struct {
	Text               string           `json:"text"`
	IncludeSigningTime bool             `json:"includeSigningTime"`
	HorizontalAlign    string           `json:"horizontalAlign,omitempty"`
	Container          *VisualRectangle `json:"container,omitempty"`
}

func (t *VisualText) Validate() error {
	if t.Text == "" {
		return invalidf("text is empty")
	}
	switch t.HorizontalAlign {
	case "", AlignLeft, AlignRight:
	default:
		return invalidf("text horizontal align %q", t.HorizontalAlign)
	}
	return nil
}

// ResourceContent is an inline resource; Content is base64 encoded on the wire.
type ResourceContent struct {
	Content  []byte `json:"content"`
	MimeType string `json:"mimeType"`
}

// VisualImage is the image overlay. Opacity goes from 0 (transparent) to 100 (opaque).
type VisualImage struct {
	Resource        ResourceContent `json:"resource"`
	Opacity         int             `json:"opacity"`
	HorizontalAlign string          `json:"horizontalAlign,omitempty"`
	VerticalAlign   string          `json:"verticalAlign,omitempty"`
}

func (i *VisualImage) Validate() error {
	if len(i.Resource.Content) == 0 {
		return invalidf("image content is empty")
	}
	if i.Resource.MimeType == "" {
		return invalidf("image mime type is empty")
	}
	if i.Opacity < 0 || i.Opacity > 100 {
		return invalidf("image opacity %d out of range 0..100", i.Opacity)
	}
	switch i.HorizontalAlign {
	case "", AlignLeft, AlignCenter, AlignRight:
	default:
		return invalidf("image horizontal align %q", i.HorizontalAlign)
	}
	switch i.VerticalAlign {
	case "", AlignTop, AlignCenter, AlignBottom:
	default:
		return invalidf("image vertical align %q", i.VerticalAlign)
	}
	return nil
}

// VisualPositioning places the stamp. PageNumber 0 appends a new page at the end of the
// document, negative values count from the end (-1 is the last page).
type VisualPositioning struct {
	PageNumber       int                    `json:"pageNumber"`
	MeasurementUnits string                 `json:"measurementUnits"`
	Manual           *VisualRectangle       `json:"manual,omitempty"`
	Auto             *VisualAutoPositioning `json:"auto,omitempty"`
}

func (p *VisualPositioning) Validate() error {
	switch p.MeasurementUnits {
	case UnitsCentimeters, UnitsPdfPoints:
	default:
		return invalidf("measurement units %q", p.MeasurementUnits)
	}
	switch {
	case p.Manual != nil && p.Auto != nil:
		return invalidf("manual and auto positioning are mutually exclusive")
	case p.Manual != nil:
		return p.Manual.validateManual()
	case p.Auto != nil:
		return p.Auto.Validate()
	default:
		return invalidf("either manual or auto positioning is required")
	}
}

// VisualRectangle has optional edges so that a container can be anchored by any
// two of left/right/width and any two of top/bottom/height.
type VisualRectangle struct {
	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Right  *float64 `json:"right,omitempty"`
	Bottom *float64 `json:"bottom,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

func countSet(values ...*float64) int {
	n := 0
	for _, v := range values {
		if v != nil {
			n++
		}
	}
	return n
}

// ValidateContainer requires exactly two of {left, right, width} and exactly two of
// {top, bottom, height}.
func (r *VisualRectangle) ValidateContainer() error {
	if n := countSet(r.Left, r.Right, r.Width); n != 2 {
		return invalidf("container needs exactly two of left, right, width (got %d)", n)
	}
	if n := countSet(r.Top, r.Bottom, r.Height); n != 2 {
		return invalidf("container needs exactly two of top, bottom, height (got %d)", n)
	}
	return r.validateNonNegative()
}

func (r *VisualRectangle) validateManual() error {
	if r.Width == nil || r.Height == nil {
		return invalidf("manual rectangle needs width and height")
	}
	if *r.Width <= 0 || *r.Height <= 0 {
		return invalidf("manual rectangle size must be positive")
	}
	return r.ValidateContainer()
}

func (r *VisualRectangle) validateNonNegative() error {
	for _, v := range []*float64{r.Left, r.Top, r.Right, r.Bottom, r.Width, r.Height} {
		if v != nil && *v < 0 {
			return invalidf("rectangle values must not be negative")
		}
	}
	return nil
}

// RectangleSize is the fixed size of each automatically placed signature.
type RectangleSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// VisualAutoPositioning flows signatures side by side inside Container, wrapping to a
// new row RowSpacing below when the row is full.
type VisualAutoPositioning struct {
	Container              VisualRectangle `json:"container"`
	SignatureRectangleSize RectangleSize   `json:"signatureRectangleSize"`
	RowSpacing             float64         `json:"rowSpacing"`
}

func (a *VisualAutoPositioning) Validate() error {
	if err := a.Container.ValidateContainer(); err != nil {
		return err
	}
	if a.SignatureRectangleSize.Width <= 0 || a.SignatureRectangleSize.Height <= 0 {
		return invalidf("signature rectangle size must be positive")
	}
	if a.RowSpacing < 0 {
		return invalidf("row spacing must not be negative")
	}
	return nil
}

// Clone returns a deep copy so presets can be customized without aliasing.
func (p *VisualPositioning) Clone() *VisualPositioning {
	if p == nil {
		return nil
	}
	out := *p
	if p.Manual != nil {
		m := p.Manual.clone()
		out.Manual = &m
	}
	if p.Auto != nil {
		a := *p.Auto
		a.Container = p.Auto.Container.clone()
		out.Auto = &a
	}
	return &out
}

func (r VisualRectangle) clone() VisualRectangle {
	cp := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		return Float(*v)
	}
	return VisualRectangle{
		Left:   cp(r.Left),
		Top:    cp(r.Top),
		Right:  cp(r.Right),
		Bottom: cp(r.Bottom),
		Width:  cp(r.Width),
		Height: cp(r.Height),
	}
}
