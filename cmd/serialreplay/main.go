package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/serialpacket/pkg/bridge"
	"github.com/robotalks/serialpacket/pkg/capture"
	"github.com/robotalks/serialpacket/pkg/env"
	fx "github.com/robotalks/serialpacket/pkg/framework"
	"github.com/robotalks/serialpacket/pkg/link"
	"github.com/robotalks/serialpacket/pkg/packet"
)

var (
	interval time.Duration
	linkOut  bool
)

func init() {
	env.SetupFlags()
	flag.DurationVar(&interval, "interval", interval, "Pause between recorded chunks.")
	flag.BoolVar(&linkOut, "to-link", linkOut, "Write the capture to the link instead of decoding it.")
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		glog.Exit("usage: serialreplay [flags] CAPTURE-FILE")
	}
	f, err := os.Open(flag.Arg(0))
	if err != nil {
		glog.Exit(err)
	}
	defer f.Close()

	conf := env.Default()
	runner := fx.NewRunner().HandleSignals()
	if linkOut {
		runner.Go(fx.NamedRun("replay", fx.RunFunc(func(ctx context.Context) error {
			if err := conf.Validate(); err != nil {
				return err
			}
			port, err := link.Open(conf.Link)
			if err != nil {
				return err
			}
			defer port.Close()
			n, err := capture.Replay(ctx, capture.NewReader(f), port, interval)
			glog.Infof("%d chunks replayed", n)
			return err
		})))
	} else {
		runner.Go(fx.NamedRun("decode", fx.RunFunc(func(ctx context.Context) error {
			return decode(ctx, conf, capture.NewReader(f))
		})))
	}
	if err = runner.Wait(); err != nil {
		glog.Exit(err)
	}
}

func decode(ctx context.Context, conf *env.Config, r *capture.Reader) error {
	var buf packet.Buffer
	dec := conf.NewDecoder()
	if err := dec.Bind(&buf); err != nil {
		return err
	}
	pump := conf.NewPump(dec, packet.HandleMessageFunc(func(ctx context.Context, msg *packet.Message) {
		fmt.Println(bridge.FormatFrame(bridge.FrameFromMessage(msg)))
	}))
	sink := writerFunc(func(p []byte) (int, error) {
		buf.Write(p)
		pump.Poll(ctx, time.Now())
		return len(p), nil
	})
	_, err := capture.Replay(ctx, r, sink, interval)
	return err
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) {
	return f(p)
}
