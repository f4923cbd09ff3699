package output

import (
	"github.com/cheggaaa/pb/v3"
)

// BarProgress shows a terminal progress bar while a record's items are
// transferred. Implements transfer.Progress. One bar per record; Start
// resets it for the next batch of items.
type BarProgress struct {
	bar *pb.ProgressBar
}

// NewBarProgress creates an idle progress display
func NewBarProgress() *BarProgress {
	return &BarProgress{}
}

// Start begins a bar for total items
func (p *BarProgress) Start(total int) {
	p.Finish()
	p.bar = pb.StartNew(total)
}

// Increment marks one item finished
func (p *BarProgress) Increment() {
	if p.bar != nil {
		p.bar.Increment()
	}
}

// Finish closes the current bar, if any
func (p *BarProgress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
