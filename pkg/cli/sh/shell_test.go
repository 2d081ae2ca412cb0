package sh

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/serialpacket/pkg/env"
	"github.com/robotalks/serialpacket/pkg/packet"
)

type lineWriter chan string

func (w lineWriter) Write(p []byte) (int, error) {
	w <- string(p)
	return len(p), nil
}

func TestShellOpenTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	peerCh := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			peerCh <- conn
		}
	}()

	conf := env.NewConfig()
	conf.PollInterval = time.Millisecond
	out := make(lineWriter, 4)
	s := &Shell{Config: conf, out: out}
	require.NoError(t, s.Open("tcp://"+ln.Addr().String()))
	defer s.Close()

	var peer net.Conn
	select {
	case peer = <-peerCh:
	case <-time.After(time.Second):
		t.Fatal("no connection")
	}
	defer peer.Close()

	enc := packet.NewEncoder(peer)
	require.NoError(t, enc.Send(3, uint16(0x0201)))
	select {
	case line := <-out:
		assert.Equal(t, "< 0x03 [2] 0102\n", line)
	case <-time.After(time.Second):
		t.Fatal("message not received")
	}

	require.NoError(t, s.Conn.Encoder.SendLine("ping"))
	buf := make([]byte, 5)
	peer.SetReadDeadline(time.Now().Add(time.Second))
	_, err = peer.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping\n", string(buf))

	require.NoError(t, s.Close())
	require.Nil(t, s.Conn)
}

func TestShellFormatMessageJSON(t *testing.T) {
	var buf packet.Buffer
	packet.NewEncoder(&buf).SendLine("OK")
	dec := packet.NewDecoder(packet.DefaultCapacity)
	require.NoError(t, dec.Bind(&buf))
	require.Equal(t, packet.StringAvailable, dec.Poll())
	msg, ok := dec.Take()
	require.True(t, ok)

	s := &Shell{OutputJSON: true}
	assert.Equal(t, `{"type":79,"text":true,"data":"T0s="}`, s.FormatMessage(msg))
	s.OutputJSON = false
	assert.Equal(t, `< "OK"`, s.FormatMessage(msg))
}
