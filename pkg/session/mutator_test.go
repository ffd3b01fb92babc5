package session

import (
	"errors"
	"testing"

	"github.com/teslashibe/go-capture/pkg/device"
)

func videoInput(t *testing.T) *DeviceInput {
	t.Helper()
	info := device.Info{ID: "cam0", Name: "Back Wide", Kind: device.KindVideo,
		Type: device.TypeWideAngle, Position: device.PositionBack}
	return NewDeviceInput(device.NewMockDevice(info))
}

func TestMutator_DetachPrecedesAttach(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()
	s := NewMock()
	m := NewMutator(q, s)

	prev := videoInput(t)
	next := videoInput(t)

	if err := m.SwapInput(nil, prev); err != nil {
		t.Fatalf("initial attach: %v", err)
	}
	if err := m.SwapInput(prev, next); err != nil {
		t.Fatalf("swap: %v", err)
	}

	want := []string{
		"begin", "add_input video", "commit",
		"begin", "remove_input video", "add_input video", "commit",
	}
	got := s.OpLog()
	if len(got) != len(want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ops[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestMutator_FailedAttachStillDetachesPrevious(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()
	s := NewMock()
	m := NewMutator(q, s)

	prev := videoInput(t)
	if err := m.SwapInput(nil, prev); err != nil {
		t.Fatalf("initial attach: %v", err)
	}

	s.FailAddInput = map[device.Kind]bool{device.KindVideo: true}
	err := m.SwapInput(prev, videoInput(t))
	if !errors.Is(err, ErrUnableToAttachInput) {
		t.Fatalf("got %v, want ErrUnableToAttachInput", err)
	}

	// The previous handle must not still be attached next to the failed one.
	if in := s.Input(device.KindVideo); in != nil {
		t.Errorf("an input is still attached after a failed swap: %s", in.Label())
	}

	got := s.OpLog()
	// Last transaction: begin, remove, add (failed), commit.
	tail := got[len(got)-4:]
	want := []string{"begin", "remove_input video", "add_input video", "commit"}
	for i := range want {
		if tail[i] != want[i] {
			t.Fatalf("tail[%d] = %q, want %q (full: %v)", i, tail[i], want[i], got)
		}
	}
}

func TestMutator_PureDetach(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()
	s := NewMock()
	m := NewMutator(q, s)

	in := videoInput(t)
	if err := m.SwapInput(nil, in); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := m.SwapInput(in, nil); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if s.Input(device.KindVideo) != nil {
		t.Error("input still attached after pure detach")
	}
}

func TestMutator_OutputSwap(t *testing.T) {
	q := NewQueue("test")
	defer q.Close()
	s := NewMock()
	m := NewMutator(q, s)

	s.FailAddOutput = true
	err := m.SwapOutput(nil, fakeOutput{"o1"})
	if !errors.Is(err, ErrUnableToAttachOutput) {
		t.Fatalf("got %v, want ErrUnableToAttachOutput", err)
	}
	if s.OutputCount() != 0 {
		t.Error("failed output attach left an output attached")
	}

	s.FailAddOutput = false
	if err := m.SwapOutput(nil, fakeOutput{"o2"}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if s.OutputCount() != 1 {
		t.Errorf("output count = %d, want 1", s.OutputCount())
	}
}

type fakeOutput struct{ id string }

func (f fakeOutput) ID() string    { return f.id }
func (f fakeOutput) Label() string { return "fake output" }

func TestCore_CapacityRules(t *testing.T) {
	c := NewCore()

	in1 := videoInput(t)
	in2 := videoInput(t)

	if err := c.AddInput(in1); err != nil {
		t.Fatalf("first attach: %v", err)
	}
	if err := c.AddInput(in2); err == nil {
		t.Error("second video input should be rejected")
	}

	c.RemoveInput(in2) // not attached; must be a no-op
	if c.Input(device.KindVideo) == nil {
		t.Error("removing an unattached input detached the attached one")
	}

	c.RemoveInput(in1)
	if c.Input(device.KindVideo) != nil {
		t.Error("input still attached after remove")
	}

	if err := c.AddOutput(fakeOutput{"o1"}); err != nil {
		t.Fatalf("output attach: %v", err)
	}
	if err := c.AddOutput(fakeOutput{"o2"}); err == nil {
		t.Error("second output should be rejected")
	}
}
