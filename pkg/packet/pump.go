package packet

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// DefaultPollInterval is the default interval between polls.
const DefaultPollInterval = 10 * time.Millisecond

// Pump polls a Decoder periodically and dispatches completed messages.
type Pump struct {
	Decoder  *Decoder
	Handler  MessageHandler
	Interval time.Duration
	// StallTimeout resets the Decoder if a frame is partially received and
	// nothing arrives for the duration. Zero disables it.
	StallTimeout time.Duration
	// OnStall is called after the Decoder is reset due to StallTimeout.
	OnStall func(context.Context)

	lastConsumed uint64
	lastProgress time.Time
	resetReq     int32
}

// NewPump creates a Pump.
func NewPump(d *Decoder, h MessageHandler) *Pump {
	return &Pump{Decoder: d, Handler: h, Interval: DefaultPollInterval}
}

// Name implements Named.
func (p *Pump) Name() string {
	return "pump"
}

// Run implements Runnable.
func (p *Pump) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	p.lastProgress = time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			p.Poll(ctx, now)
		}
	}
}

// RequestReset asks the polling goroutine to reset the Decoder before the
// next poll. It can be called from any goroutine.
func (p *Pump) RequestReset() {
	atomic.StoreInt32(&p.resetReq, 1)
}

// Poll dispatches all messages completed with currently available bytes.
// It returns the number of messages dispatched.
func (p *Pump) Poll(ctx context.Context, now time.Time) (count int) {
	if atomic.CompareAndSwapInt32(&p.resetReq, 1, 0) {
		p.Decoder.Reset()
		p.lastProgress = now
	}
	for p.Decoder.Poll() != None {
		msg, ok := p.Decoder.Take()
		if !ok {
			continue
		}
		count++
		if glog.V(3) {
			glog.Infof("RCV type=0x%02x len=%d text=%v truncated=%v", msg.Type, msg.Len(), msg.Text, msg.Truncated)
		}
		if h := p.Handler; h != nil {
			h.HandleMessage(ctx, msg)
		}
	}
	p.checkStall(ctx, now)
	return
}

func (p *Pump) checkStall(ctx context.Context, now time.Time) {
	d := p.Decoder
	if consumed := d.Consumed(); consumed != p.lastConsumed || !d.Receiving() {
		p.lastConsumed, p.lastProgress = consumed, now
		return
	}
	if p.StallTimeout <= 0 || now.Sub(p.lastProgress) < p.StallTimeout {
		return
	}
	glog.Warningf("partial frame stalled for %v, reset", now.Sub(p.lastProgress))
	d.Reset()
	p.lastProgress = now
	if fn := p.OnStall; fn != nil {
		fn(ctx)
	}
}
