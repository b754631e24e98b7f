// Package render rasterizes a computed settlement into the shareable result
// card.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/go-text/typesetting/di"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/number"

	"github.com/susu3304/partypay/internal/i18n"
	"github.com/susu3304/partypay/internal/settlement"
)

// DefaultScale is the oversampling factor of the card.
const DefaultScale = 2

// Logical layout, multiplied by the scale when drawing.
const (
	cardWidth   = 560
	padding     = 24
	bodySize    = 13
	titleSize   = 17
	lineGap     = 8
	maxReasonLn = 14
)

var ErrNoResult = errors.New("no result to render")

var (
	background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	foreground = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	muted      = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	accent     = color.RGBA{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff}
	positive   = color.RGBA{R: 0x16, G: 0xa3, B: 0x4a, A: 0xff}
	negative   = color.RGBA{R: 0xdc, G: 0x26, B: 0x26, A: 0xff}
	rule       = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
)

// Renderer draws result cards. Labels are English; names, items and
// reasoning may be Persian and are shaped right to left.
type Renderer struct {
	scale int
}

func New(scale int) *Renderer {
	if scale < 1 {
		scale = DefaultScale
	}
	return &Renderer{scale: scale}
}

// Source yields the result to draw, or nil when there is none yet.
type Source func() *settlement.Result

// View binds a result source so the card can be captured later.
func (r *Renderer) View(src Source) *View {
	return &View{renderer: r, source: src}
}

// Static is a Source for a fixed result.
func Static(res *settlement.Result) Source {
	return func() *settlement.Result { return res }
}

// View is a capturable result card.
type View struct {
	renderer *Renderer
	source   Source
}

// Capture renders the current result to PNG.
func (v *View) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var res *settlement.Result
	if v.source != nil {
		res = v.source()
	}
	return v.renderer.Render(res)
}

type ruleOp struct {
	y int
}

type layout struct {
	s        int
	sh       shaper
	regular  *typeface
	bold     *typeface
	title    *typeface
	glyphs   []glyphOp
	rules    []ruleOp
	y        int
	lineStep int
}

func (r *Renderer) newLayout() (*layout, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	size := func(pt int) fixed.Int26_6 { return fixed.I(pt * r.scale) }
	return &layout{
		s:        r.scale,
		regular:  newTypeface(regularFont, 400, size(bodySize)),
		bold:     newTypeface(boldFont, 700, size(bodySize)),
		title:    newTypeface(boldFont, 700, size(titleSize)),
		y:        padding * r.scale,
		lineStep: (bodySize + lineGap) * r.scale,
	}, nil
}

func (l *layout) px(v int) int { return v * l.s }

// place queues the glyphs of ln with its left edge at x.
func (l *layout) place(x fixed.Int26_6, ln line, c color.Color) {
	dot := x
	for _, run := range ln.runs {
		for _, g := range run.Glyphs {
			l.glyphs = append(l.glyphs, glyphOp{
				face:  run.Face,
				gid:   g.GlyphID,
				size:  run.Size,
				x:     dot + g.XOffset,
				y:     fixed.I(l.y) - g.YOffset,
				color: c,
			})
			dot += g.Advance
		}
	}
}

// single shapes a one-line left-to-right cell. Right-to-left words inside
// it keep their own order.
func (l *layout) single(s string, tf *typeface) (line, bool) {
	lines := l.sh.shape(s, tf, di.DirectionLTR, noWrap)
	if len(lines) == 0 {
		return line{}, false
	}
	return lines[0], true
}

func (l *layout) text(x int, s string, tf *typeface, c color.Color) {
	if ln, ok := l.single(s, tf); ok {
		l.place(fixed.I(l.px(x)), ln, c)
	}
}

func (l *layout) rightText(s string, tf *typeface, c color.Color) {
	if ln, ok := l.single(s, tf); ok {
		l.place(fixed.I(l.px(cardWidth-padding))-ln.width, ln, c)
	}
}

func (l *layout) centerText(s string, tf *typeface, c color.Color) {
	if ln, ok := l.single(s, tf); ok {
		l.place((fixed.I(l.px(cardWidth))-ln.width)/2, ln, c)
	}
}

// paragraph places a wrapped line, right-aligned when it reads right to left.
func (l *layout) paragraph(ln line, c color.Color) {
	x := fixed.I(l.px(padding))
	if ln.rtl {
		x = fixed.I(l.px(cardWidth-padding)) - ln.width
	}
	l.place(x, ln, c)
}

func (l *layout) newline() { l.y += l.lineStep }

func (l *layout) hr() {
	l.y += l.px(lineGap)
	l.rules = append(l.rules, ruleOp{y: l.y})
	l.y += l.px(lineGap)
}

// wrap breaks s into lines no wider than the content width. Each paragraph
// takes the direction of its first strong character.
func (l *layout) wrap(s string, tf *typeface) []line {
	limit := l.px(cardWidth - 2*padding)
	var lines []line
	for _, para := range strings.Split(s, "\n") {
		para = strings.Join(strings.Fields(para), " ")
		if para == "" {
			continue
		}
		lines = append(lines, l.sh.shape(para, tf, paragraphDirection(para), limit)...)
	}
	return lines
}

var columns = [...]int{0, 150, 250, 340, 450}

// Render draws res at the renderer's scale and encodes it as PNG.
func (r *Renderer) Render(res *settlement.Result) ([]byte, error) {
	if res == nil {
		return nil, ErrNoResult
	}
	l, err := r.layoutCard(res)
	if err != nil {
		return nil, err
	}

	height := l.y + l.px(padding)
	img := image.NewRGBA(image.Rect(0, 0, l.px(cardWidth), height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	for _, op := range l.rules {
		band := image.Rect(l.px(padding), op.y, l.px(cardWidth-padding), op.y+l.s)
		draw.Draw(img, band, image.NewUniform(rule), image.Point{}, draw.Src)
	}
	for _, op := range l.glyphs {
		drawGlyph(img, op)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) layoutCard(res *settlement.Result) (*layout, error) {
	l, err := r.newLayout()
	if err != nil {
		return nil, err
	}

	t := func(key string) string { return i18n.T(language.English, key) }
	p := i18n.Printer(language.English)
	amount := func(v float64) string {
		return p.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
	}

	l.newline()
	l.text(padding, t("resultTitle"), l.title, foreground)
	l.rightText("PartyPay", l.bold, accent)
	l.hr()

	l.newline()
	for i, key := range []string{"person", "share", "paidAmount", "finalBalance", "status"} {
		l.text(padding+columns[i], t(key), l.bold, muted)
	}
	for _, row := range res.Table {
		l.newline()
		balance, balanceColor := amount(row.Balance), foreground
		switch {
		case row.Balance > 0:
			balance, balanceColor = "+"+balance, positive
		case row.Balance < 0:
			balanceColor = negative
		}
		l.text(padding+columns[0], row.Name, l.regular, foreground)
		l.text(padding+columns[1], amount(row.Share), l.regular, foreground)
		l.text(padding+columns[2], amount(row.Paid), l.regular, foreground)
		l.text(padding+columns[3], balance, l.regular, balanceColor)
		l.text(padding+columns[4], row.Status, l.regular, muted)
	}
	l.hr()

	l.newline()
	l.text(padding, t("settlementPlan"), l.bold, foreground)
	if len(res.Settlements) == 0 {
		l.newline()
		l.text(padding, "—", l.regular, muted)
	}
	for _, s := range res.Settlements {
		l.newline()
		l.text(padding, fmt.Sprintf("%s → %s: %s", s.From, s.To, amount(s.Amount)), l.regular, foreground)
	}

	if reasoning := l.wrap(res.Reasoning, l.regular); len(reasoning) > 0 {
		l.hr()
		if len(reasoning) > maxReasonLn {
			ellipsis, _ := l.single("…", l.regular)
			ellipsis.rtl = reasoning[maxReasonLn-2].rtl
			reasoning = append(reasoning[:maxReasonLn-1], ellipsis)
		}
		for _, ln := range reasoning {
			l.newline()
			l.paragraph(ln, muted)
		}
	}

	l.hr()
	l.newline()
	l.centerText(t("appTagline")+" • partypay.app", l.regular, muted)
	return l, nil
}
