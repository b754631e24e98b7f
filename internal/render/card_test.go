package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susu3304/partypay/internal/settlement"
)

func sampleResult() *settlement.Result {
	return &settlement.Result{
		Table: []settlement.Row{
			{Name: "A", Share: 10, Paid: 20, Balance: 10, Status: "creditor"},
			{Name: "B", Share: 10, Paid: 0, Balance: -10, Status: "debtor"},
		},
		Settlements: []settlement.Transfer{{From: "B", To: "A", Amount: 10}},
		Reasoning:   "B owes A half of the pizza",
	}
}

func TestRenderScalesCard(t *testing.T) {
	for _, scale := range []int{1, 2} {
		data, err := New(scale).Render(sampleResult())
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, cardWidth*scale, img.Bounds().Dx())
		assert.Greater(t, img.Bounds().Dy(), 2*padding*scale)
	}
}

func TestRenderGrowsWithContent(t *testing.T) {
	r := New(DefaultScale)
	short, err := r.Render(sampleResult())
	require.NoError(t, err)

	long := sampleResult()
	long.Reasoning = strings.Repeat("every line of reasoning is part of the card ", 40)
	for i := 0; i < 10; i++ {
		long.Table = append(long.Table, settlement.Row{Name: "extra"})
	}
	tall, err := r.Render(long)
	require.NoError(t, err)

	a, err := png.Decode(bytes.NewReader(short))
	require.NoError(t, err)
	b, err := png.Decode(bytes.NewReader(tall))
	require.NoError(t, err)
	assert.Greater(t, b.Bounds().Dy(), a.Bounds().Dy())
}

func TestRenderEmptyResult(t *testing.T) {
	_, err := New(0).Render(&settlement.Result{})
	assert.NoError(t, err)
}

func TestCaptureWithoutResult(t *testing.T) {
	_, err := New(DefaultScale).View(Static(nil)).Capture(context.Background())
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestCaptureCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultScale).View(Static(sampleResult())).Capture(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWrap(t *testing.T) {
	l, err := New(1).newLayout()
	require.NoError(t, err)

	lines := l.wrap(strings.Repeat("word ", 200)+"\n\nlast", l.regular)
	require.Greater(t, len(lines), 2)
	last, ok := l.single("last", l.regular)
	require.True(t, ok)
	assert.Equal(t, last.width, lines[len(lines)-1].width)
	assert.Empty(t, l.wrap("  \n ", l.regular))
}

func TestWrapDirection(t *testing.T) {
	l, err := New(1).newLayout()
	require.NoError(t, err)

	lines := l.wrap("علی سهم پیتزا را پرداخت کرد\nAli paid for the pizza", l.regular)
	require.Len(t, lines, 2)
	assert.True(t, lines[0].rtl)
	assert.False(t, lines[1].rtl)
}

func persianResult() *settlement.Result {
	return &settlement.Result{
		Table: []settlement.Row{
			{Name: "علی", Share: 150000, Paid: 300000, Balance: 150000, Status: "طلبکار"},
			{Name: "مریم‌سادات", Share: 150000, Paid: 0, Balance: -150000, Status: "بدهکار"},
		},
		Settlements: []settlement.Transfer{{From: "مریم‌سادات", To: "علی", Amount: 150000}},
		Reasoning:   "مریم سهم خود از پیتزا و نوشابه را به علی می‌دهد، چون علی کل صورتحساب را پرداخت کرده است.",
	}
}

func TestPersianGlyphs(t *testing.T) {
	l, err := New(DefaultScale).layoutCard(persianResult())
	require.NoError(t, err)
	require.NotEmpty(t, l.glyphs)

	arabic := 0
	for _, op := range l.glyphs {
		assert.NotZero(t, op.gid, "missing glyph in face %p", op.face)
		if op.face.Font == arabicFont {
			arabic++
		}
	}
	assert.Greater(t, arabic, 0)

	data, err := New(DefaultScale).Render(persianResult())
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestHeaderGlyphs(t *testing.T) {
	l, err := New(1).layoutCard(&settlement.Result{})
	require.NoError(t, err)
	for _, op := range l.glyphs {
		assert.NotZero(t, op.gid)
	}
}

func TestRenderRightToLeftRowInk(t *testing.T) {
	l, err := New(1).newLayout()
	require.NoError(t, err)
	l.newline()
	l.text(padding, "علی", l.regular, foreground)
	require.NotEmpty(t, l.glyphs)
	for _, op := range l.glyphs {
		assert.Same(t, arabicFont, op.face.Font)
	}

	img := image.NewRGBA(image.Rect(0, 0, cardWidth, l.y+padding))
	for _, op := range l.glyphs {
		drawGlyph(img, op)
	}
	inked := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			inked++
		}
	}
	assert.Greater(t, inked, 0)
}
