package packet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type pumpTestEnv struct {
	buf  Buffer
	enc  *Encoder
	pump *Pump
	msgs []*Message
}

func newPumpTestEnv(t *testing.T) *pumpTestEnv {
	env := &pumpTestEnv{}
	env.enc = NewEncoder(&env.buf)
	dec := NewDecoder(DefaultCapacity)
	require.NoError(t, dec.Bind(&env.buf))
	env.pump = NewPump(dec, HandleMessageFunc(func(ctx context.Context, msg *Message) {
		env.msgs = append(env.msgs, msg)
	}))
	return env
}

func TestPumpPoll(t *testing.T) {
	env := newPumpTestEnv(t)
	ctx := context.Background()
	now := time.Now()
	require.Zero(t, env.pump.Poll(ctx, now))

	env.enc.Send(1, uint16(10))
	env.enc.SendLine("log line")
	env.enc.Send(2)
	require.Equal(t, 3, env.pump.Poll(ctx, now))
	require.Len(t, env.msgs, 3)
	require.Equal(t, uint16(10), env.msgs[0].Uint16())
	require.Equal(t, "log line", env.msgs[1].String())
	require.True(t, env.msgs[1].Text)
	require.Equal(t, byte(2), env.msgs[2].Type)
	require.Zero(t, env.msgs[2].Len())
}

func TestPumpStall(t *testing.T) {
	env := newPumpTestEnv(t)
	env.pump.StallTimeout = 100 * time.Millisecond
	var stalls int
	env.pump.OnStall = func(context.Context) { stalls++ }
	ctx := context.Background()

	t0 := time.Now()
	env.buf.Write([]byte{1, 3, 0, 0, 0, 0xaa})
	require.Zero(t, env.pump.Poll(ctx, t0))
	require.True(t, env.pump.Decoder.Receiving())

	require.Zero(t, env.pump.Poll(ctx, t0.Add(50*time.Millisecond)))
	require.Zero(t, stalls)
	require.True(t, env.pump.Decoder.Receiving())

	require.Zero(t, env.pump.Poll(ctx, t0.Add(100*time.Millisecond)))
	require.Equal(t, 1, stalls)
	require.False(t, env.pump.Decoder.Receiving())

	env.enc.Send(5, uint8(1))
	require.Equal(t, 1, env.pump.Poll(ctx, t0.Add(time.Second)))
	require.Equal(t, byte(5), env.msgs[0].Type)
	require.Equal(t, 1, stalls)
}

func TestPumpStallDisabled(t *testing.T) {
	env := newPumpTestEnv(t)
	ctx := context.Background()
	t0 := time.Now()
	env.buf.Write([]byte{1, 3, 0})
	env.pump.Poll(ctx, t0)
	env.pump.Poll(ctx, t0.Add(time.Hour))
	require.True(t, env.pump.Decoder.Receiving())
}

func TestPumpRequestReset(t *testing.T) {
	env := newPumpTestEnv(t)
	ctx := context.Background()
	now := time.Now()
	env.buf.Write([]byte{1, 2, 0, 0, 0, 0x11})
	env.pump.Poll(ctx, now)
	require.True(t, env.pump.Decoder.Receiving())

	env.pump.RequestReset()
	env.enc.SendLine("ready")
	require.Equal(t, 1, env.pump.Poll(ctx, now))
	require.Equal(t, "ready", env.msgs[0].String())
	require.False(t, env.pump.Decoder.Receiving())

	// request is consumed once.
	env.buf.Write([]byte{1, 1, 0, 0, 0})
	env.pump.Poll(ctx, now)
	env.buf.Write([]byte{0x22})
	require.Equal(t, 1, env.pump.Poll(ctx, now))
	require.Equal(t, uint8(0x22), env.msgs[1].Uint8())
}

func TestPumpRun(t *testing.T) {
	var buf Buffer
	dec := NewDecoder(DefaultCapacity)
	require.NoError(t, dec.Bind(&buf))
	msgCh := make(chan *Message, 2)
	pump := NewPump(dec, HandleMessageFunc(func(ctx context.Context, msg *Message) {
		msgCh <- msg
	}))
	pump.Interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- pump.Run(ctx) }()

	enc := NewEncoder(&buf)
	require.NoError(t, enc.Send(3, float32(2.5)))
	select {
	case msg := <-msgCh:
		require.Equal(t, byte(3), msg.Type)
		require.Equal(t, float32(2.5), msg.Float32())
	case <-time.After(time.Second):
		t.Fatal("expect message timeout")
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}
