package selection

// Render is one call recorded by Recorder.
type Render struct {
	Baseline bool
	Index    int
	Snapshot Snapshot
}

// Recorder is a Sink that remembers every render, for tests.
type Recorder struct {
	Renders []Render
}

func (r *Recorder) RenderSnapshot(index int, s Snapshot) {
	r.Renders = append(r.Renders, Render{Index: index, Snapshot: s})
}

func (r *Recorder) RenderDisabledBaseline() {
	r.Renders = append(r.Renders, Render{Baseline: true, Index: -1})
}

// Last returns the most recent render.
func (r *Recorder) Last() (Render, bool) {
	if len(r.Renders) == 0 {
		return Render{}, false
	}
	return r.Renders[len(r.Renders)-1], true
}

// Snapshots returns the number of RenderSnapshot calls.
func (r *Recorder) Snapshots() int {
	n := 0
	for _, rr := range r.Renders {
		if !rr.Baseline {
			n++
		}
	}
	return n
}

// Reset forgets recorded renders.
func (r *Recorder) Reset() { r.Renders = nil }
