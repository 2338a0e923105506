package motion

// shotRing is a fixed-capacity ring of recent shots. Appending past the
// capacity overwrites the oldest entry.
type shotRing struct {
	buf   []*DetectedShot
	next  int
	count int
}

func newShotRing(capacity int) *shotRing {
	return &shotRing{buf: make([]*DetectedShot, capacity)}
}

func (r *shotRing) push(s *DetectedShot) {
	r.buf[r.next] = s
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// recent returns the buffered shots, most recent first.
func (r *shotRing) recent() []*DetectedShot {
	out := make([]*DetectedShot, 0, r.count)
	idx := r.next - 1
	for i := 0; i < r.count; i++ {
		if idx < 0 {
			idx += len(r.buf)
		}
		out = append(out, r.buf[idx])
		idx--
	}
	return out
}

func (r *shotRing) clear() {
	for i := range r.buf {
		r.buf[i] = nil
	}
	r.next = 0
	r.count = 0
}
