package testsupport

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"chronoreel/internal/encoding"
)

// BackendCall records one invocation of RecordingBackend.
type BackendCall struct {
	Op     string
	Inputs []string
	Frames []int
	Out    string
}

// RecordingBackend is an encoding.Backend that writes small placeholder files
// instead of running ffmpeg. Concat output lists its inputs' contents in order.
type RecordingBackend struct {
	mu    sync.Mutex
	calls []BackendCall

	// FailEncode, when set, is consulted before each EncodeClips call; a
	// non-nil result fails that call.
	FailEncode func(call int, clips []encoding.Clip) error
	// FailConcat fails every Concat call when non-nil.
	FailConcat error
	// OnEncode runs after a successful EncodeClips call.
	OnEncode func(call int)

	encodes int
}

var _ encoding.Backend = (*RecordingBackend)(nil)

// EncodeClips implements encoding.Backend.
func (b *RecordingBackend) EncodeClips(ctx context.Context, clips []encoding.Clip, out string) error {
	b.mu.Lock()
	b.encodes++
	call := b.encodes
	paths := make([]string, len(clips))
	frames := make([]int, len(clips))
	for i, c := range clips {
		paths[i] = c.Path
		frames[i] = c.Frames
	}
	b.calls = append(b.calls, BackendCall{Op: "encode", Inputs: paths, Frames: frames, Out: out})
	fail := b.FailEncode
	onEncode := b.OnEncode
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if fail != nil {
		if err := fail(call, clips); err != nil {
			return err
		}
	}
	for _, c := range clips {
		if _, err := os.Stat(c.Path); err != nil {
			return fmt.Errorf("clip frame missing: %w", err)
		}
	}
	if err := os.WriteFile(out, []byte(fmt.Sprintf("segment:%d\n", len(clips))), 0o644); err != nil {
		return err
	}
	if onEncode != nil {
		onEncode(call)
	}
	return nil
}

// Concat implements encoding.Backend.
func (b *RecordingBackend) Concat(ctx context.Context, inputs []string, out string) error {
	b.mu.Lock()
	b.calls = append(b.calls, BackendCall{Op: "concat", Inputs: append([]string(nil), inputs...), Out: out})
	fail := b.FailConcat
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if fail != nil {
		return fail
	}
	var sb strings.Builder
	for _, input := range inputs {
		data, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("concat input: %w", err)
		}
		sb.Write(data)
	}
	return os.WriteFile(out, []byte(sb.String()), 0o644)
}

// Calls returns a copy of the recorded calls.
func (b *RecordingBackend) Calls() []BackendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]BackendCall(nil), b.calls...)
}

// CallsOf returns the recorded calls with the given op.
func (b *RecordingBackend) CallsOf(op string) []BackendCall {
	var out []BackendCall
	for _, c := range b.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}
