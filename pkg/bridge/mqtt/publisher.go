package mqtt

import (
	"context"
	"encoding/json"

	"github.com/golang/glog"

	"github.com/robotalks/serialpacket/pkg/bridge"
)

// Topics under <prefix><id>/
const (
	TopicRx   = "rx"
	TopicTx   = "tx"
	TopicMeta = "meta"
)

// Meta is published (retained) when connected and cleared on exit.
type Meta struct {
	Link     string `json:"link,omitempty"`
	Capacity int    `json:"capacity"`
}

// Publisher publishes frames received from the link to <id>/rx and sends
// frames from <id>/tx to the link.
type Publisher struct {
	Queue  *Queue
	ID     string
	Sender bridge.FrameSender

	metaJSON []byte
}

// NewPublisher creates a Publisher.
func NewPublisher(brokerURL, id string, meta Meta, sender bridge.FrameSender) (*Publisher, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	p := &Publisher{ID: id, Sender: sender, metaJSON: metaJSON}
	opts.SetBinaryWill(topicPrefix+p.Topic(TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("serialpacket:" + id)
	}
	p.Queue = NewQueue(opts, topicPrefix)
	p.Queue.OnConnect = func(q *Queue) {
		q.PubWith(p.Topic(TopicMeta), p.metaJSON, 1, true)
	}
	return p, nil
}

// Topic returns the topic relative to the prefix.
func (p *Publisher) Topic(name string) string {
	return p.ID + "/" + name
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

// PublishFrame implements bridge.Publisher.
func (p *Publisher) PublishFrame(ctx context.Context, f *bridge.Frame) error {
	data, err := bridge.EncodeFrame(f)
	if err != nil {
		return err
	}
	token := p.Queue.Pub(p.Topic(TopicRx), data)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.Topic(TopicTx), p.handleTx)
	token := p.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	<-ctx.Done()
	sub.Close()
	p.Queue.PubWith(p.Topic(TopicMeta), nil, 1, true).Wait()
	p.Queue.Close()
	return ctx.Err()
}

func (p *Publisher) handleTx(_ string, payload []byte) {
	f, err := bridge.DecodeFrame(payload)
	if err != nil {
		glog.Warningf("bad frame on %s: %v", p.Topic(TopicTx), err)
		return
	}
	if err = p.Sender.SendFrame(f); err != nil {
		glog.Errorf("send frame error: %v", err)
	}
}
