package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/serialpacket/pkg/bridge"
	"github.com/robotalks/serialpacket/pkg/env"
	fx "github.com/robotalks/serialpacket/pkg/framework"
	"github.com/robotalks/serialpacket/pkg/link"
	"github.com/robotalks/serialpacket/pkg/packet"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *Conn

	out io.Writer
}

// Conn is an opened link with the receiving loop running.
type Conn struct {
	URL     string
	Port    io.ReadWriteCloser
	Encoder *packet.Encoder
	Decoder *packet.Decoder
	Pump    *packet.Pump
	Runner  *fx.Runner
}

const (
	shellKey       = "$shell"
	unopenedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&SendCmd,
		&LineCmd,
		&ResetCmd,
		&StatusCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print received messages in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unopenedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpened wraps command func requires an opened link.
func MustBeOpened(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("link not opened"))
			return
		}
		fn(c)
	}
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

// FormatMessage formats a received message for display.
func (s *Shell) FormatMessage(msg *packet.Message) string {
	frame := bridge.FrameFromMessage(msg)
	if s.OutputJSON {
		out, err := json.Marshal(frame)
		if err != nil {
			return err.Error()
		}
		return string(out)
	}
	return "< " + bridge.FormatFrame(frame)
}

// HandleMessage implements packet.MessageHandler.
func (s *Shell) HandleMessage(ctx context.Context, msg *packet.Message) {
	if s.out != nil {
		fmt.Fprintln(s.out, s.FormatMessage(msg))
		return
	}
	s.Shell.Println(s.FormatMessage(msg))
}

// Open opens the link and starts receiving.
func (s *Shell) Open(linkURL string) error {
	s.Close()
	port, err := link.Open(linkURL)
	if err != nil {
		return err
	}
	conn := &Conn{
		URL:     linkURL,
		Port:    port,
		Encoder: s.Config.NewEncoder(port),
		Decoder: s.Config.NewDecoder(),
	}
	source := packet.NewReaderSource(port)
	if err := conn.Decoder.Bind(source); err != nil {
		port.Close()
		return err
	}
	pump := s.Config.NewPump(conn.Decoder, s)
	conn.Pump = pump
	pump.OnStall = func(context.Context) {
		glog.Warningf("%s: partial frame stalled, decoder reset", linkURL)
	}
	s.Conn = conn
	conn.Runner = fx.NewRunner().Go(
		fx.NamedRun("source", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, port, func() error {
				return source.Run(ctx)
			})
		})),
		pump,
	)
	s.setPrompt(fmt.Sprintf("%s > ", linkURL))
	return nil
}

// Close closes current link.
func (s *Shell) Close() error {
	conn := s.Conn
	if conn == nil {
		return nil
	}
	s.Conn = nil
	s.setPrompt(unopenedPrompt)
	conn.Runner.Stop()
	return conn.Runner.Wait()
}

func (s *Shell) setPrompt(prompt string) {
	if s.Shell != nil {
		s.Shell.SetPrompt(prompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoOpen && s.Config.Link != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Link)
		}
		if err := s.Open(s.Config.Link); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.Link, err)
		}
	}
	defer s.Close()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// OpenCmd opens a link.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "URL",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("expect exactly one link URL"))
				return
			}
			if err := ShellFrom(c).Open(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes current link.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Close(); err != nil {
				c.Err(err)
			}
		},
	}

	// SendCmd sends a binary frame.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TYPE [KIND:VALUE...], KIND is u8 i8 u16 i16 u32 i32 u64 i64 f32 f64 bool hex",
		Func: MustBeOpened(func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("type expected"))
				return
			}
			typ, err := ParseType(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			values := make([]interface{}, 0, len(c.Args)-1)
			for _, arg := range c.Args[1:] {
				v, err := ParseValue(arg)
				if err != nil {
					c.Err(err)
					return
				}
				values = append(values, v)
			}
			if err := ShellFrom(c).Conn.Encoder.Send(typ, values...); err != nil {
				c.Err(err)
			}
		}),
	}

	// LineCmd sends a line of text.
	LineCmd = ishell.Cmd{
		Name: "line",
		Help: "TEXT",
		Func: MustBeOpened(func(c *ishell.Context) {
			if err := ShellFrom(c).Conn.Encoder.SendLine(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
			}
		}),
	}

	// ResetCmd discards the partially received frame.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "",
		Func: MustBeOpened(func(c *ishell.Context) {
			ShellFrom(c).Conn.Pump.RequestReset()
		}),
	}

	// StatusCmd shows the link status.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "",
		Func: MustBeOpened(func(c *ishell.Context) {
			conn := ShellFrom(c).Conn
			c.Printf("%s: capacity %d, max payload %d\n",
				conn.URL, conn.Decoder.Capacity(), conn.Encoder.MaxPayload)
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoOpen(true).Run(flag.Args()...)
}
