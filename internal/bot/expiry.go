package bot

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// queueSize bounds the pending notices; overflow is dropped.
const queueSize = 64

// Minimal session interface for sending channel messages.
type messageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type notice struct {
	channelID string
	content   string
}

// expiryNotifier posts "session expired" notices off the janitor goroutine.
type expiryNotifier struct {
	session  messageSender
	logger   *zap.Logger
	queue    chan notice
	stopChan chan struct{}
	done     chan struct{}
	sleep    func(time.Duration)
}

func newExpiryNotifier(session messageSender, logger *zap.Logger) *expiryNotifier {
	return &expiryNotifier{
		session:  session,
		logger:   logger,
		queue:    make(chan notice, queueSize),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		sleep:    time.Sleep,
	}
}

func (w *expiryNotifier) start() {
	if w == nil {
		return
	}
	go w.loop()
}

// stop waits for the notice being sent; queued notices are dropped.
func (w *expiryNotifier) stop() {
	if w == nil {
		return
	}
	select {
	case <-w.stopChan:
		return
	default:
	}
	close(w.stopChan)
	<-w.done
}

func (w *expiryNotifier) enqueue(channelID, content string) {
	if channelID == "" {
		return
	}
	select {
	case w.queue <- notice{channelID: channelID, content: content}:
	default:
		w.logger.Warn("expiry notice dropped", zap.String("channel", channelID))
	}
}

func (w *expiryNotifier) loop() {
	defer close(w.done)
	ctx := context.Background()
	for {
		select {
		case n := <-w.queue:
			if err := w.sendWithRetry(ctx, n.channelID, n.content); err != nil {
				w.logger.Warn("failed to send expiry notice", zap.String("channel", n.channelID), zap.Error(err))
			}
		case <-w.stopChan:
			return
		}
	}
}

func (w *expiryNotifier) sendWithRetry(ctx context.Context, channelID, content string) error {
	const attemptTimeout = 12 * time.Second
	const maxAttempts = 2

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		_, err := w.session.ChannelMessageSend(channelID, content, discordgo.WithContext(sendCtx))
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isTemporaryOrTimeout(err) {
			return err
		}
		w.sleep(time.Duration(300+rand.Intn(500)) * time.Millisecond)
	}
	return lastErr
}

func isTemporaryOrTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
