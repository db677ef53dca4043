package engine

// Frontier is the ordered worklist of category listing pages awaiting
// processing. The driver owns it exclusively for the duration of a run,
// so no locking discipline is needed: one item is popped, fully processed,
// and only then is the next considered.
type Frontier struct {
	queue []string
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{queue: make([]string, 0, 64)}
}

// Push appends a listing-page URL to the worklist.
func (f *Frontier) Push(listingURL string) {
	f.queue = append(f.queue, listingURL)
}

// Pop removes and returns the oldest URL. The second return value is
// false when the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue = f.queue[1:]
	return u, true
}

// Len returns the number of queued listing pages.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// IsEmpty returns true if no listing pages remain.
func (f *Frontier) IsEmpty() bool {
	return len(f.queue) == 0
}
