package track

import (
	tramkf "github.com/cobaltsignal/tramkf"
)

// Chain holds an ordered list of track descriptors and tracks which
// one is currently active, implementing the "attempt, advance-on-end-
// of-segment, retry" protocol the renderer drives on every micro-step.
type Chain struct {
	segments []Segment
	index    int
	active   ActiveSegment
}

// NewChain validates a nonempty descriptor list, activates the first
// segment at startPos, and returns a Chain.
func NewChain(segments []Segment, startPos float64) (*Chain, error) {
	if len(segments) == 0 {
		return nil, tramkf.NewDomainError("track.NewChain", "segment list must not be empty")
	}
	active, err := segments[0].Activate(startPos)
	if err != nil {
		return nil, err
	}
	return &Chain{segments: segments, index: 0, active: active}, nil
}

// Sample attempts to sample the active segment at pos, advancing
// through exhausted segments (reactivating each next descriptor at
// pos) until one yields a sample or the list is exhausted. Returns
// tramkf.EndOfStream once every segment has been exhausted.
func (c *Chain) Sample(pos float64) (Curvature, error) {
	for {
		if sample, ok := c.active.Sample(pos); ok {
			return sample, nil
		}
		c.index++
		if c.index >= len(c.segments) {
			return Curvature{}, tramkf.EndOfStream
		}
		active, err := c.segments[c.index].Activate(pos)
		if err != nil {
			return Curvature{}, err
		}
		c.active = active
	}
}
