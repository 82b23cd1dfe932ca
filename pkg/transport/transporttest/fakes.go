package transporttest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/transport"
)

// StaticTSSClient returns a fixed response (or error) for every request,
// recording the last params/url it was called with for assertions.
type StaticTSSClient struct {
	Response plist.Dict
	Err      error

	LastParams plist.Dict
	LastURL    string
	Calls      int
}

func (c *StaticTSSClient) RequestSend(ctx context.Context, request plist.Dict, url string) (plist.Dict, error) {
	c.Calls++
	c.LastParams = request
	c.LastURL = url
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Response, nil
}

// QueueTransport is a scripted fake of transport.Transport: Receive drains
// Inbound in order, then returns transport.ErrTimeout forever; Send appends
// to Sent.
type QueueTransport struct {
	Device       transport.Device
	Inbound      []plist.Dict
	QueryValueErr error

	Sent    []plist.Dict
	Started bool
	Options plist.Dict
	Closed  bool

	// LeadingTimeouts is the number of ErrTimeout returns Receive gives
	// before it starts draining Inbound, for exercising a caller's
	// timeout-continuation handling.
	LeadingTimeouts int

	recvIndex int
}

func (t *QueueTransport) Open(ctx context.Context, udid string) error { return nil }

func (t *QueueTransport) QueryType(ctx context.Context) (transport.Device, error) {
	return t.Device, nil
}

func (t *QueueTransport) QueryValue(ctx context.Context, key string) (plist.Dict, error) {
	if t.QueryValueErr != nil {
		return nil, t.QueryValueErr
	}
	return plist.Dict{}, nil
}

func (t *QueueTransport) GetValue(ctx context.Context, key string) (any, error) { return nil, nil }

func (t *QueueTransport) Send(ctx context.Context, msg plist.Dict) error {
	t.Sent = append(t.Sent, msg)
	return nil
}

func (t *QueueTransport) Receive(ctx context.Context) (plist.Dict, error) {
	if t.LeadingTimeouts > 0 {
		t.LeadingTimeouts--
		return nil, transport.ErrTimeout
	}
	if t.recvIndex >= len(t.Inbound) {
		return nil, transport.ErrTimeout
	}
	msg := t.Inbound[t.recvIndex]
	t.recvIndex++
	return msg, nil
}

func (t *QueueTransport) StartRestore(ctx context.Context, options plist.Dict, protocolVersion int) error {
	t.Started = true
	t.Options = options
	return nil
}

func (t *QueueTransport) Reboot(ctx context.Context) error { return nil }

func (t *QueueTransport) Close() error {
	t.Closed = true
	return nil
}

// MemSecondaryConn is an in-memory transport.SecondaryConn backed by a
// bytes.Buffer, for tests that inspect what was written to it.
type MemSecondaryConn struct {
	bytes.Buffer
	Closed bool
}

func (c *MemSecondaryConn) Read(p []byte) (int, error) { return c.Buffer.Read(p) }

func (c *MemSecondaryConn) Close() error {
	c.Closed = true
	return nil
}

// StaticSecondaryDialer returns Conn (or Err) from every DialSecondary call,
// recording the ports it was dialed with.
type StaticSecondaryDialer struct {
	Conn       transport.SecondaryConn
	Err        error
	FailCount  int // DialSecondary fails this many times before succeeding
	DialedPorts []int
}

func (d *StaticSecondaryDialer) DialSecondary(ctx context.Context, dataPort int) (transport.SecondaryConn, error) {
	d.DialedPorts = append(d.DialedPorts, dataPort)
	if d.FailCount > 0 {
		d.FailCount--
		return nil, fmt.Errorf("transporttest: dial failed")
	}
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Conn, nil
}

// RecordingProgress records every Notify/NotifyText call it receives.
type RecordingProgress struct {
	Buckets []string
	Values  []int
	Texts   []string
}

func (p *RecordingProgress) Notify(bucket string, progress int) {
	p.Buckets = append(p.Buckets, bucket)
	p.Values = append(p.Values, progress)
}

func (p *RecordingProgress) NotifyText(text string) {
	p.Texts = append(p.Texts, text)
}

// StaticASRStreamer records the StreamImage call it received and returns Err.
type StaticASRStreamer struct {
	Err error

	CalledDataPort int
	CalledImage    transport.IPSWMember
	CalledData     []byte
}

func (s *StaticASRStreamer) StreamImage(ctx context.Context, dataPort int, image transport.IPSWMember, source func() ([]byte, error), progress transport.ProgressReporter) error {
	s.CalledDataPort = dataPort
	s.CalledImage = image
	if s.Err != nil {
		return s.Err
	}
	data, err := source()
	if err != nil {
		return err
	}
	s.CalledData = data
	return nil
}
