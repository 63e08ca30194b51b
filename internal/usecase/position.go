package usecase

import (
	"context"
	"fmt"

	"restpki-batch/internal/config"
	"restpki-batch/internal/domain/entity"
	"restpki-batch/internal/domain/repository"
	"restpki-batch/pkg/apierrors"
)

// Layout constants shared by the customised presets (centimeters)
const (
	marginCm          = 2.54
	signatureWidthCm  = 5.0
	signatureHeightCm = 3.0
	containerHeightCm = 12.31
	rowSpacingCm      = 1.0
)

// ErrUnknownPreset is returned for a preset outside 1..6
var ErrUnknownPreset = apierrors.New(apierrors.CodeUnknownPreset, "unknown visual position preset")

// PositionBuilder turns a preset number into a position descriptor
type PositionBuilder interface {
	Build(ctx context.Context, preset int) (*entity.VisualPositioning, error)
}

type positionBuilder struct {
	presets repository.PresetRepository
}

func NewPositionBuilder(presets repository.PresetRepository) PositionBuilder {
	return &positionBuilder{presets: presets}
}

// Build returns the position for preset:
//
//	1 footnote computed by REST PKI
//	2 footnote with 2.54cm left, bottom and right margins
//	3 new page appended by REST PKI
//	4 new page with 2.54cm left, top and right margins and 5x3 rectangles
//	5 manual 5x3 rectangle on a new page
//	6 custom automatic flow on the last page
//
// Any other value yields (nil, ErrUnknownPreset).
func (b *positionBuilder) Build(ctx context.Context, preset int) (*entity.VisualPositioning, error) {
	switch preset {
	case 1:
		return b.footnote(ctx)
	case 2:
		position, err := b.footnote(ctx)
		if err != nil {
			return nil, err
		}
		auto := ensureAuto(position)
		auto.Container.Left = entity.Float(marginCm)
		auto.Container.Bottom = entity.Float(marginCm)
		auto.Container.Right = entity.Float(marginCm)
		return position, nil
	case 3:
		return b.newPage(ctx)
	case 4:
		position, err := b.newPage(ctx)
		if err != nil {
			return nil, err
		}
		auto := ensureAuto(position)
		auto.Container.Left = entity.Float(marginCm)
		auto.Container.Top = entity.Float(marginCm)
		auto.Container.Right = entity.Float(marginCm)
		auto.SignatureRectangleSize = entity.RectangleSize{Width: signatureWidthCm, Height: signatureHeightCm}
		return position, nil
	case 5:
		// Page 0 appends a new page at the end of the document
		return &entity.VisualPositioning{
			PageNumber:       0,
			MeasurementUnits: entity.UnitsCentimeters,
			Manual: &entity.VisualRectangle{
				Left:   entity.Float(marginCm),
				Bottom: entity.Float(marginCm),
				Width:  entity.Float(signatureWidthCm),
				Height: entity.Float(signatureHeightCm),
			},
		}, nil
	case 6:
		// Negative pages count from the end, -1 is the last page
		return &entity.VisualPositioning{
			PageNumber:       -1,
			MeasurementUnits: entity.UnitsCentimeters,
			Auto: &entity.VisualAutoPositioning{
				Container: entity.VisualRectangle{
					Left:   entity.Float(marginCm),
					Right:  entity.Float(marginCm),
					Bottom: entity.Float(marginCm),
					Height: entity.Float(containerHeightCm),
				},
				SignatureRectangleSize: entity.RectangleSize{Width: signatureWidthCm, Height: signatureHeightCm},
				RowSpacing:             rowSpacingCm,
			},
		}, nil
	default:
		return nil, apierrors.Wrap(apierrors.CodeUnknownPreset,
			fmt.Sprintf("unknown visual position preset %d, expected %d..%d", preset, config.MinPositionPreset, config.MaxPositionPreset),
			ErrUnknownPreset)
	}
}

// footnote and newPage hand out copies so callers may edit them freely
func (b *positionBuilder) footnote(ctx context.Context) (*entity.VisualPositioning, error) {
	position, err := b.presets.Footnote(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	return position.Clone(), nil
}

func (b *positionBuilder) newPage(ctx context.Context) (*entity.VisualPositioning, error) {
	position, err := b.presets.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	return position.Clone(), nil
}

func ensureAuto(position *entity.VisualPositioning) *entity.VisualAutoPositioning {
	if position.Auto == nil {
		position.Auto = &entity.VisualAutoPositioning{}
	}
	return position.Auto
}
