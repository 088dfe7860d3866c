package audioctx

import (
	"errors"
	"testing"
)

// fakeOutput records resume/suspend calls and can fail on demand
type fakeOutput struct {
	resumes   int
	suspends  int
	resumeErr error
}

func (f *fakeOutput) Resume() error  { f.resumes++; return f.resumeErr }
func (f *fakeOutput) Suspend() error { f.suspends++; return nil }

// fakeDriver counts opens and can simulate a missing backend
type fakeDriver struct {
	opens   int
	out     *fakeOutput
	openErr error
}

func (f *fakeDriver) Open() (Output, error) {
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.out, nil
}

func TestAudioContext(t *testing.T) {
	t.Run("Get Returns Same Instance", func(t *testing.T) {
		d := &fakeDriver{out: &fakeOutput{}}
		SetDriver(d)
		defer SetDriver(&otoDriver{})

		a, err := Get()
		if err != nil {
			t.Fatalf("failed to get context: %v", err)
		}
		b, err := Get()
		if err != nil {
			t.Fatalf("failed to get context: %v", err)
		}

		if a != b {
			t.Error("repeated Get should return the identical instance")
		}
		if d.opens != 1 {
			t.Errorf("expected 1 driver open, got %d", d.opens)
		}
	})

	t.Run("Get Unavailable", func(t *testing.T) {
		d := &fakeDriver{openErr: errors.New("no backend")}
		SetDriver(d)
		defer SetDriver(&otoDriver{})

		if _, err := Get(); !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("Close Then Get Creates Fresh Instance", func(t *testing.T) {
		d := &fakeDriver{out: &fakeOutput{}}
		SetDriver(d)
		defer SetDriver(&otoDriver{})

		if _, err := Get(); err != nil {
			t.Fatalf("failed to get context: %v", err)
		}

		Close()

		if _, err := Get(); err != nil {
			t.Fatalf("failed to get context after close: %v", err)
		}

		if d.opens != 2 {
			t.Errorf("expected a fresh open after Close, got %d opens", d.opens)
		}
		if d.out.suspends != 1 {
			t.Errorf("expected Close to suspend, got %d suspends", d.out.suspends)
		}
	})

	t.Run("Close Idempotent", func(t *testing.T) {
		SetDriver(&fakeDriver{out: &fakeOutput{}})
		defer SetDriver(&otoDriver{})

		// Nothing exists yet; Close must be a no-op
		Close()
		Close()
	})

	t.Run("Activate Swallows Resume Failure", func(t *testing.T) {
		out := &fakeOutput{resumeErr: errors.New("locked")}
		SetDriver(&fakeDriver{out: out})
		defer SetDriver(&otoDriver{})

		if _, err := Get(); err != nil {
			t.Fatalf("failed to get context: %v", err)
		}

		Activate()

		if out.resumes != 1 {
			t.Errorf("expected 1 resume attempt, got %d", out.resumes)
		}
	})

	t.Run("Activate Without Context", func(t *testing.T) {
		SetDriver(&fakeDriver{out: &fakeOutput{}})
		defer SetDriver(&otoDriver{})

		// No Get yet; Activate must not create a context
		Activate()
	})
}
