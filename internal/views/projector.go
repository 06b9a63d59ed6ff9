package views

import (
	"fmt"
	"sync"
	"time"

	"github.com/mfairbank/restocalc/internal/types"
)

// Projector generates view bundles and enforces the delivery state
// machine: a delivered FINAL view is an immutable snapshot, and a changed
// assessment can only reach the recipient again through an explicit
// reissue, which produces a new revision.
type Projector struct {
	cfg ProjectorConfig

	mu        sync.Mutex
	delivered map[string]map[Audience]int // assessment ID -> audience -> last delivered revision
	now       func() time.Time
}

// NewProjector creates a projector with the given configuration.
func NewProjector(cfg ProjectorConfig) *Projector {
	return &Projector{
		cfg:       cfg,
		delivered: make(map[string]map[Audience]int),
		now:       time.Now,
	}
}

// Project builds the three views for an assessment. It refuses to
// regenerate views for an assessment that already has delivered ones;
// those callers must Reissue instead.
func (p *Projector) Project(a *types.Assessment) (*Bundle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if revs := p.delivered[a.ID.String()]; len(revs) > 0 {
		return nil, fmt.Errorf(
			"assessment %s has delivered views; use Reissue to produce a new revision", a.ID)
	}
	return Project(a, p.cfg)
}

// Deliver marks one view of the bundle delivered. Only FINAL views (from a
// frozen assessment) may be delivered.
func (p *Projector) Deliver(b *Bundle, aud Audience) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	meta := b.meta(aud)
	if meta == nil {
		return fmt.Errorf("bundle has no %s view", aud)
	}
	if meta.State != StateFinal {
		return fmt.Errorf("cannot deliver %s view in state %s; finalize the assessment first", aud, meta.State)
	}

	meta.Delivered = true
	meta.DeliveredAt = p.now()

	revs, ok := p.delivered[meta.AssessmentID]
	if !ok {
		revs = make(map[Audience]int)
		p.delivered[meta.AssessmentID] = revs
	}
	revs[aud] = meta.Revision
	return nil
}

// Reissue regenerates the views for an assessment whose earlier views were
// already delivered, bumping every revision past the highest delivered
// one. The previously delivered snapshots are unaffected.
func (p *Projector) Reissue(a *types.Assessment) (*Bundle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	revs := p.delivered[a.ID.String()]
	if len(revs) == 0 {
		return nil, fmt.Errorf("assessment %s has no delivered views; use Project", a.ID)
	}

	highest := 0
	for _, r := range revs {
		if r > highest {
			highest = r
		}
	}

	b, err := Project(a, p.cfg)
	if err != nil {
		return nil, err
	}
	b.Adjuster.Meta.Revision = highest + 1
	b.Client.Meta.Revision = highest + 1
	b.Internal.Meta.Revision = highest + 1
	return b, nil
}

func (b *Bundle) meta(aud Audience) *Meta {
	switch aud {
	case AudienceAdjuster:
		if b.Adjuster != nil {
			return &b.Adjuster.Meta
		}
	case AudienceClient:
		if b.Client != nil {
			return &b.Client.Meta
		}
	case AudienceInternal:
		if b.Internal != nil {
			return &b.Internal.Meta
		}
	}
	return nil
}
