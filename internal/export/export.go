// Package export turns a rendered result card into an image and delivers it
// through an ordered chain of channels, degrading to a file download.
package export

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/susu3304/partypay/internal/metrics"
)

var (
	// ErrCanceled is returned by a strategy when the user aborted delivery.
	// It stops the chain without a notification.
	ErrCanceled = errors.New("export canceled")
	// ErrUnavailable is returned by a strategy whose channel does not exist
	// on this front end.
	ErrUnavailable = errors.New("export channel unavailable")
)

// MIMEType of every exported image.
const MIMEType = "image/png"

// Capturer renders the result view to PNG bytes.
type Capturer interface {
	Capture(ctx context.Context) ([]byte, error)
}

type Image struct {
	Name string
	MIME string
	Data []byte
}

// FileName is the download name for an image captured at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("partypay-result-%d.png", t.UnixMilli())
}

// Strategy delivers an image over one channel.
type Strategy interface {
	Deliver(ctx context.Context, img Image) error
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, img Image) error

func (f StrategyFunc) Deliver(ctx context.Context, img Image) error { return f(ctx, img) }

// Availability is implemented by strategies that can tell up front whether
// their channel exists. An unavailable strategy is skipped.
type Availability interface {
	Available() bool
}

// Unavailable is a channel the front end cannot offer.
type Unavailable struct{}

func (Unavailable) Available() bool                       { return false }
func (Unavailable) Deliver(context.Context, Image) error { return ErrUnavailable }

// Channels are the delivery strategies of one front end. Download is the
// fallback of the other two.
type Channels struct {
	Download  Strategy
	Clipboard Strategy
	Share     Strategy
}

type Action string

const (
	ActionDownload Action = "download"
	ActionCopy     Action = "copy"
	ActionShare    Action = "share"
)

// ParseAction accepts download, copy and share.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionDownload, ActionCopy, ActionShare:
		return a, true
	}
	return "", false
}

type Outcome string

const (
	Delivered     Outcome = "delivered"
	Canceled      Outcome = "canceled"
	CaptureFailed Outcome = "capture_failed"
	Failed        Outcome = "failed"
	Busy          Outcome = "busy"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the notification to surface; Key is a message catalog key.
type Notice struct {
	Kind NoticeKind
	Key  string
}

// Report is the terminal outcome of one export action.
type Report struct {
	Action  Action
	Outcome Outcome
	// Channel is the channel that delivered the image.
	Channel  string
	FellBack bool
	Image    *Image
	// Notice is nil after a cancellation.
	Notice *Notice
}

type step struct {
	channel    string
	strategy   Strategy
	successKey string
}

const errorKey = "error"

// Pipeline runs export actions for one result view. Only one action runs at
// a time.
type Pipeline struct {
	capturer Capturer
	logger   *zap.Logger
	now      func() time.Time

	capturing atomic.Bool
}

func New(capturer Capturer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{capturer: capturer, logger: logger, now: time.Now}
}

// Capturing reports whether an export action is running.
func (p *Pipeline) Capturing() bool { return p.capturing.Load() }

// CaptureImage renders the view once. A failure is logged and yields nil.
func (p *Pipeline) CaptureImage(ctx context.Context) *Image {
	data, err := p.capturer.Capture(ctx)
	if err == nil && len(data) == 0 {
		err = errors.New("empty image")
	}
	if err != nil {
		p.logger.Error("capture result image", zap.Error(err))
		return nil
	}
	return &Image{Name: FileName(p.now()), MIME: MIMEType, Data: data}
}

func (p *Pipeline) Download(ctx context.Context, ch Channels) Report {
	return p.Run(ctx, ActionDownload, ch)
}

func (p *Pipeline) Copy(ctx context.Context, ch Channels) Report {
	return p.Run(ctx, ActionCopy, ch)
}

func (p *Pipeline) Share(ctx context.Context, ch Channels) Report {
	return p.Run(ctx, ActionShare, ch)
}

func chain(a Action, ch Channels) []step {
	download := step{channel: "download", strategy: ch.Download, successKey: "downloadSuccess"}
	switch a {
	case ActionCopy:
		return []step{{channel: "clipboard", strategy: ch.Clipboard, successKey: "copySuccess"}, download}
	case ActionShare:
		return []step{{channel: "share", strategy: ch.Share, successKey: "shareSuccess"}, download}
	default:
		return []step{download}
	}
}

// Run captures once and tries the action's channels in order until one
// delivers. A cancellation ends the chain quietly; any other failure moves on
// to the next channel.
func (p *Pipeline) Run(ctx context.Context, a Action, ch Channels) Report {
	r := p.run(ctx, a, ch)
	metrics.ExportsTotal.WithLabelValues(string(a), string(r.Outcome)).Inc()
	return r
}

func (p *Pipeline) run(ctx context.Context, a Action, ch Channels) Report {
	r := Report{Action: a}
	if !p.capturing.CompareAndSwap(false, true) {
		r.Outcome = Busy
		r.Notice = &Notice{Kind: NoticeError, Key: "busy"}
		return r
	}
	defer p.capturing.Store(false)

	img := p.CaptureImage(ctx)
	if img == nil {
		r.Outcome = CaptureFailed
		r.Notice = &Notice{Kind: NoticeError, Key: errorKey}
		return r
	}
	r.Image = img

	for i, s := range chain(a, ch) {
		if i > 0 {
			r.FellBack = true
		}
		if s.strategy == nil {
			continue
		}
		if av, ok := s.strategy.(Availability); ok && !av.Available() {
			continue
		}
		err := s.strategy.Deliver(ctx, *img)
		switch {
		case err == nil:
			r.Outcome = Delivered
			r.Channel = s.channel
			r.Notice = &Notice{Kind: NoticeSuccess, Key: s.successKey}
			return r
		case errors.Is(err, ErrCanceled):
			r.Outcome = Canceled
			r.Channel = s.channel
			return r
		default:
			p.logger.Warn("export delivery failed",
				zap.String("action", string(a)),
				zap.String("channel", s.channel),
				zap.Error(err),
			)
		}
	}

	r.Outcome = Failed
	r.Notice = &Notice{Kind: NoticeError, Key: errorKey}
	return r
}
