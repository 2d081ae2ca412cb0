// Package bridge forwards frames between a link and message brokers.
//
// Frames received from the link are published to all Publishers. Frames
// from publishers (e.g. an MQTT topic or websocket clients) are sent to the
// link through FrameSender. Frames are forwarded opaquely, no command
// dispatching is done here.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"

	"github.com/robotalks/serialpacket/pkg/packet"
)

// Publisher publishes frames received from the link.
type Publisher interface {
	PublishFrame(context.Context, *Frame) error
}

// FrameSender sends frames to the link.
type FrameSender interface {
	SendFrame(*Frame) error
}

// SendFrameFunc is func type of FrameSender.
type SendFrameFunc func(*Frame) error

// SendFrame implements FrameSender.
func (f SendFrameFunc) SendFrame(frame *Frame) error {
	return f(frame)
}

// Bridge connects a link with Publishers.
type Bridge struct {
	Encoder    *packet.Encoder
	Publishers []Publisher
	Metrics    *Metrics

	sendLock sync.Mutex
}

// New creates a Bridge sending frames with enc.
func New(enc *packet.Encoder, pubs ...Publisher) *Bridge {
	return &Bridge{Encoder: enc, Publishers: pubs}
}

// Add adds more publishers.
func (b *Bridge) Add(pubs ...Publisher) *Bridge {
	b.Publishers = append(b.Publishers, pubs...)
	return b
}

// HandleMessage implements packet.MessageHandler.
func (b *Bridge) HandleMessage(ctx context.Context, msg *packet.Message) {
	frame := FrameFromMessage(msg)
	b.Metrics.received(frame)
	var errs *multierror.Error
	for _, pub := range b.Publishers {
		errs = multierror.Append(errs, pub.PublishFrame(ctx, frame))
	}
	if err := errs.ErrorOrNil(); err != nil {
		b.Metrics.failed("publish")
		glog.Errorf("publish frame type=0x%02x error: %v", frame.Type, err)
	}
}

// SendFrame implements FrameSender.
func (b *Bridge) SendFrame(f *Frame) (err error) {
	b.sendLock.Lock()
	if f.Text {
		err = b.Encoder.SendLine(string(f.Data))
	} else if f.Type > 0xff {
		err = fmt.Errorf("invalid frame type 0x%x", f.Type)
	} else {
		err = b.Encoder.SendBytes(byte(f.Type), f.Data)
	}
	b.sendLock.Unlock()
	if err != nil {
		b.Metrics.failed("send")
		return err
	}
	b.Metrics.sent(f)
	glog.V(3).Infof("SND %s", f.String())
	return nil
}

// Stalled is used as packet.Pump.OnStall.
func (b *Bridge) Stalled(ctx context.Context) {
	b.Metrics.stalled()
}
