// Package link opens the byte stream to the firmware.
package link

import (
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// DefaultBaudRate is used when baud isn't specified.
const DefaultBaudRate = 115200

// Open opens a link from URL. Supported forms:
//   serial:///dev/ttyUSB0?baud=115200&timeout=100ms&parity=N&stopbits=1
//   /dev/ttyUSB0
//   tcp://host:port
func Open(rawURL string) (io.ReadWriteCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid link URL %q", rawURL)
	}
	switch u.Scheme {
	case "", "serial":
		conf, err := SerialConfigFromURL(u)
		if err != nil {
			return nil, err
		}
		glog.V(1).Infof("open serial port %s baud=%d", conf.Name, conf.Baud)
		port, err := serial.OpenPort(conf)
		if err != nil {
			return nil, errors.Wrapf(err, "open serial port %s", conf.Name)
		}
		if conf.ReadTimeout > 0 {
			return &idlePort{port}, nil
		}
		return port, nil
	case "tcp":
		glog.V(1).Infof("dial %s", u.Host)
		conn, err := net.Dial("tcp", u.Host)
		if err != nil {
			return nil, errors.Wrapf(err, "dial %s", u.Host)
		}
		return conn, nil
	default:
		return nil, errors.Errorf("unknown link URL scheme: %q", u.Scheme)
	}
}

// idlePort reports an expired read timeout as an empty read. A serial port
// with a read timeout returns (0, io.EOF) when no byte arrives in time.
type idlePort struct {
	io.ReadWriteCloser
}

func (p *idlePort) Read(b []byte) (int, error) {
	n, err := p.ReadWriteCloser.Read(b)
	if n == 0 && err == io.EOF {
		return 0, nil
	}
	return n, err
}

// SerialConfigFromURL creates serial port config from URL.
func SerialConfigFromURL(u *url.URL) (*serial.Config, error) {
	conf := &serial.Config{Name: u.Path, Baud: DefaultBaudRate}
	if conf.Name == "" {
		conf.Name = u.Opaque
	}
	if conf.Name == "" {
		return nil, errors.New("serial port name required")
	}
	q := u.Query()
	if val := q.Get("baud"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil || baud <= 0 {
			return nil, errors.Errorf("invalid baud rate %q", val)
		}
		conf.Baud = baud
	}
	if val := q.Get("timeout"); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid timeout %q", val)
		}
		conf.ReadTimeout = timeout
	}
	if val := q.Get("size"); val != "" {
		size, err := strconv.Atoi(val)
		if err != nil || size < 5 || size > 8 {
			return nil, errors.Errorf("invalid data bits %q", val)
		}
		conf.Size = byte(size)
	}
	switch strings.ToUpper(q.Get("parity")) {
	case "", "N":
		conf.Parity = serial.ParityNone
	case "E":
		conf.Parity = serial.ParityEven
	case "O":
		conf.Parity = serial.ParityOdd
	default:
		return nil, errors.Errorf("invalid parity %q", q.Get("parity"))
	}
	switch q.Get("stopbits") {
	case "", "1":
		conf.StopBits = serial.Stop1
	case "2":
		conf.StopBits = serial.Stop2
	default:
		return nil, errors.Errorf("invalid stop bits %q", q.Get("stopbits"))
	}
	return conf, nil
}
