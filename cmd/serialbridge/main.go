package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/serialpacket/pkg/bridge"
	"github.com/robotalks/serialpacket/pkg/bridge/mqtt"
	"github.com/robotalks/serialpacket/pkg/bridge/websocket"
	"github.com/robotalks/serialpacket/pkg/capture"
	"github.com/robotalks/serialpacket/pkg/env"
	fx "github.com/robotalks/serialpacket/pkg/framework"
	"github.com/robotalks/serialpacket/pkg/link"
	"github.com/robotalks/serialpacket/pkg/packet"
)

func init() {
	env.SetupFlags()
	env.SetupBridgeFlags()
}

func serveHTTP(name, addr string, handler http.Handler) fx.Runnable {
	return fx.NamedRun(name, fx.RunFunc(func(ctx context.Context) error {
		server := &http.Server{Addr: addr, Handler: handler}
		glog.Infof("%s listening on %s", name, addr)
		return fx.RunWithContextCancel(ctx, func() {
			server.Close()
		}, server.ListenAndServe)
	}))
}

func main() {
	flag.Parse()

	conf := env.Default()
	if err := conf.Validate(); err != nil {
		glog.Exit(err)
	}

	port, err := link.Open(conf.Link)
	if err != nil {
		glog.Exit(err)
	}

	var reader io.Reader = port
	if conf.CapturePath != "" {
		f, err := os.Create(conf.CapturePath)
		if err != nil {
			glog.Exitf("create capture: %v", err)
		}
		defer f.Close()
		reader = capture.Tee(port, capture.NewWriter(f))
	}
	source := packet.NewReaderSource(reader)
	dec := conf.NewDecoder()
	if err = dec.Bind(source); err != nil {
		glog.Exit(err)
	}

	reg := prometheus.NewRegistry()
	b := bridge.New(conf.NewEncoder(port))
	b.Metrics = bridge.NewMetrics(reg)

	pump := conf.NewPump(dec, b)
	pump.OnStall = b.Stalled

	runnables := []fx.Runnable{
		fx.NamedRun("source", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, port, func() error {
				return source.Run(ctx)
			})
		})),
		pump,
	}

	if conf.MQTTURL != "" {
		id := conf.LinkID()
		pub, err := mqtt.NewPublisher(conf.MQTTURL, id, mqtt.Meta{Link: conf.Link, Capacity: conf.Capacity}, b)
		if err != nil {
			glog.Exitf("mqtt: %v", err)
		}
		glog.Infof("bridging %s as %s over MQTT", conf.Link, id)
		b.Add(pub)
		runnables = append(runnables, pub)
	}
	if conf.WebsocketAddr != "" {
		hub := websocket.NewHub(b)
		b.Add(hub)
		mux := http.NewServeMux()
		mux.Handle("/", hub.Handler())
		runnables = append(runnables, serveHTTP("websocket", conf.WebsocketAddr, mux))
	}
	if conf.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		runnables = append(runnables, serveHTTP("metrics", conf.MetricsAddr, mux))
	}

	if err = fx.NewRunner().HandleSignals().Go(runnables...).Wait(); err != nil {
		glog.Exit(err)
	}
}
