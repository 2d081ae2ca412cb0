package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/serialpacket/pkg/bridge"
	"github.com/robotalks/serialpacket/pkg/bridge/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/serial/"
)

func init() {
	if val := os.Getenv("SERIALPKT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/"+mqtt.TopicMeta) {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		f, err := bridge.DecodeFrame(payload)
		if err != nil {
			log.Printf("%s: bad frame: %v", topic, err)
			return
		}
		log.Printf("%s: %s", topic, bridge.FormatFrame(f))
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
