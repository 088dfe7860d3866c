package audioctx

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 2
)

// otoDriver opens the audio backend through oto.
//
// oto permits exactly one context per process and offers no way to destroy
// it, so the driver creates it once and re-hands the same context on
// reopen after [Close]; Close suspends it instead of tearing it down.
type otoDriver struct {
	once sync.Once
	ctx  *oto.Context
	err  error
}

func (d *otoDriver) Open() (Output, error) {
	d.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			d.err = err
			return
		}
		<-ready
		d.ctx = ctx
	})

	if d.err != nil {
		return nil, d.err
	}

	if err := d.ctx.Resume(); err != nil {
		return nil, err
	}

	return d.ctx, nil
}
