package render

import (
	"bytes"
	_ "embed"
	"image"
	"image/color"
	"math"
	"slices"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	tslang "github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Go fonts have no Arabic script, so Persian runs fall back to Noto Sans
// Arabic (SIL OFL 1.1, see fonts/OFL.txt).
//
//go:embed fonts/NotoSansArabic.ttf
var notoSansArabic []byte

var (
	fontOnce    sync.Once
	regularFont *font.Font
	boldFont    *font.Font
	arabicFont  *font.Font
	fontErr     error
)

var weightAxis = ot.MustNewTag("wght")

func parseFont(data []byte) (*font.Font, error) {
	ld, err := ot.NewLoader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return font.NewFont(ld)
}

func loadFonts() error {
	fontOnce.Do(func() {
		if regularFont, fontErr = parseFont(goregular.TTF); fontErr != nil {
			return
		}
		if boldFont, fontErr = parseFont(gobold.TTF); fontErr != nil {
			return
		}
		arabicFont, fontErr = parseFont(notoSansArabic)
	})
	return fontErr
}

// typeface is a fallback chain of faces at one size. Faces carry glyph
// caches and must not be shared between goroutines.
type typeface struct {
	faces []*font.Face
	size  fixed.Int26_6
}

func newTypeface(latin *font.Font, weight float32, size fixed.Int26_6) *typeface {
	arabic := font.NewFace(arabicFont)
	arabic.SetVariations([]font.Variation{{Tag: weightAxis, Value: weight}})
	return &typeface{faces: []*font.Face{font.NewFace(latin), arabic}, size: size}
}

// ResolveFace picks the first face mapping r, or the primary face when none
// does.
func (tf *typeface) ResolveFace(r rune) *font.Face {
	for _, f := range tf.faces {
		if _, ok := f.NominalGlyph(r); ok {
			return f
		}
	}
	return tf.faces[0]
}

// line is one shaped line with its runs in visual order.
type line struct {
	runs  []shaping.Output
	width fixed.Int26_6
	rtl   bool
}

// shaper segments, shapes and wraps text. It keeps scratch buffers, so a
// shaper belongs to a single layout.
type shaper struct {
	seg  shaping.Segmenter
	hb   shaping.HarfbuzzShaper
	wrap shaping.LineWrapper
}

var cardLanguage = tslang.NewLanguage("en")

// noWrap is wider than any card.
const noWrap = math.MaxInt32

// paragraphDirection follows the first strong character of s.
func paragraphDirection(s string) di.Direction {
	for _, r := range s {
		switch {
		case unicode.In(r, unicode.Arabic, unicode.Hebrew, unicode.Syriac, unicode.Thaana):
			return di.DirectionRTL
		case unicode.IsLetter(r):
			return di.DirectionLTR
		}
	}
	return di.DirectionLTR
}

// shape lays s out as a single paragraph in direction dir, breaking it into
// lines no wider than maxWidth pixels.
func (sh *shaper) shape(s string, tf *typeface, dir di.Direction, maxWidth int) []line {
	runes := []rune(s)
	if len(runes) == 0 {
		return nil
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Size:      tf.size,
		Language:  cardLanguage,
	}
	segments := sh.seg.Split(input, tf)
	outs := make([]shaping.Output, 0, len(segments))
	for _, in := range segments {
		outs = append(outs, sh.hb.Shape(in))
	}

	wrapped, _ := sh.wrap.WrapParagraph(shaping.WrapConfig{Direction: dir}, maxWidth, runes, shaping.NewSliceIterator(outs))
	lines := make([]line, 0, len(wrapped))
	for _, w := range wrapped {
		ln := line{runs: slices.Clone(w), rtl: dir == di.DirectionRTL}
		slices.SortFunc(ln.runs, func(a, b shaping.Output) int { return int(a.VisualIndex - b.VisualIndex) })
		for _, run := range ln.runs {
			ln.width += run.Advance
		}
		lines = append(lines, ln)
	}
	return lines
}

// glyphOp is one positioned glyph. x and y locate its origin on the
// baseline, in pixels.
type glyphOp struct {
	face  *font.Face
	gid   font.GID
	size  fixed.Int26_6
	x, y  fixed.Int26_6
	color color.Color
}

// drawGlyph fills the outline of op onto dst.
func drawGlyph(dst draw.Image, op glyphOp) {
	outline, ok := op.face.GlyphData(op.gid).(font.GlyphOutline)
	if !ok || len(outline.Segments) == 0 {
		return
	}
	scale := float32(op.size) / 64 / float32(op.face.Upem())
	ox, oy := float32(op.x)/64, float32(op.y)/64

	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := -minX, -minY
	for i := range outline.Segments {
		for _, p := range outline.Segments[i].ArgsSlice() {
			x, y := ox+p.X*scale, oy-p.Y*scale
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	bounds := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	)
	if bounds.Empty() {
		return
	}

	dx, dy := ox-float32(bounds.Min.X), oy-float32(bounds.Min.Y)
	pt := func(p ot.SegmentPoint) (float32, float32) { return dx + p.X*scale, dy - p.Y*scale }

	ras := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	ras.DrawOp = draw.Src
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			ras.ClosePath()
			ras.MoveTo(pt(seg.Args[0]))
		case ot.SegmentOpLineTo:
			ras.LineTo(pt(seg.Args[0]))
		case ot.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			ras.QuadTo(bx, by, cx, cy)
		case ot.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			ex, ey := pt(seg.Args[2])
			ras.CubeTo(bx, by, cx, cy, ex, ey)
		}
	}
	ras.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(dst, bounds, image.NewUniform(op.color), image.Point{}, mask, image.Point{}, draw.Over)
}
