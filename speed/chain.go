package speed

import (
	tramkf "github.com/cobaltsignal/tramkf"
)

// Chain holds an ordered list of speed-profile descriptors and tracks
// which one is currently active, implementing the same "attempt,
// advance-on-end-of-segment, retry" protocol as track.Chain, but
// parameterized by the full (time, pos, speed, accel) drive tuple
// rather than position alone.
type Chain struct {
	segments []Segment
	index    int
	active   ActiveSegment
}

// NewChain validates a nonempty descriptor list, activates the first
// segment at the given initial state, and returns a Chain.
func NewChain(segments []Segment, time, pos, speedVal, accel float64) (*Chain, error) {
	if len(segments) == 0 {
		return nil, tramkf.NewDomainError("speed.NewChain", "segment list must not be empty")
	}
	active, err := segments[0].Activate(time, pos, speedVal, accel)
	if err != nil {
		return nil, err
	}
	return &Chain{segments: segments, index: 0, active: active}, nil
}

// Drive attempts to drive the active segment at (time, pos, speed,
// accel), advancing through exhausted segments (reactivating each next
// descriptor at the current state) until one yields a sample or the
// list is exhausted. Returns tramkf.EndOfStream once every segment has
// been exhausted.
func (c *Chain) Drive(time, pos, speedVal, accel float64) (Drive, error) {
	for {
		if d, ok := c.active.Drive(time, pos, speedVal, accel); ok {
			return d, nil
		}
		c.index++
		if c.index >= len(c.segments) {
			return Drive{}, tramkf.EndOfStream
		}
		active, err := c.segments[c.index].Activate(time, pos, speedVal, accel)
		if err != nil {
			return Drive{}, err
		}
		c.active = active
	}
}
