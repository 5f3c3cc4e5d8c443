// seehuhn.de/go/heatmap - density heatmaps for interactive maps
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package heatmap

import "time"

// job is one unit of queued work: either the replay of all retained
// points into a freshly built grid, or the accumulation of a range of
// newly added points into the current grid.  Jobs run in small steps,
// one per Tick.
type job struct {
	rebuild bool
	started bool // rebuild jobs: grid has been created

	// gen is the grid generation the job writes into.  A job whose
	// generation is no longer current is abandoned at its next step.
	gen uint64

	next, end int // range of Heatmap.points still to accumulate

	startTime time.Time
}

// jobQueue is a FIFO of jobs.  Only the head job makes progress.
type jobQueue struct {
	jobs []*job
}

func (q *jobQueue) push(j *job) {
	q.jobs = append(q.jobs, j)
}

func (q *jobQueue) head() *job {
	if len(q.jobs) == 0 {
		return nil
	}
	return q.jobs[0]
}

func (q *jobQueue) pop() {
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
}

func (q *jobQueue) len() int {
	return len(q.jobs)
}

// Tick runs one scheduling unit: creating a grid, accumulating one chunk
// of points, or the final raster pass of a job.  It reports whether more
// work is queued.  Hosts call Tick from their event loop, for example
// once per animation frame.
func (h *Heatmap) Tick() bool {
	j := h.queue.head()
	if j == nil {
		return false
	}
	if h.step(j) {
		h.queue.pop()
	}
	h.metrics.queueDepth(h.queue.len())
	return h.queue.len() > 0
}

// step advances j and reports whether it is finished.
func (h *Heatmap) step(j *job) bool {
	if j.rebuild && !j.started {
		h.rebuildQueued = false
		if !h.beginRebuild() {
			return true
		}
		j.started = true
		j.gen = h.generation
		j.next, j.end = 0, len(h.points)
		j.startTime = time.Now()
		return false
	}

	if h.grid == nil || j.gen != h.generation {
		Logger().Warn("abandoning batch for replaced grid",
			"batchGeneration", j.gen, "generation", h.generation,
			"remaining", j.end-j.next)
		h.metrics.aborted()
		return true
	}

	end := min(j.next+h.cfg.chunkSize, j.end)
	h.accumulateRange(j.next, end, !j.rebuild)
	Logger().Debug("accumulated chunk",
		"generation", j.gen, "from", j.next, "to", end, "of", j.end)
	j.next = end
	if j.next < j.end {
		return false
	}

	h.redraw()
	if j.rebuild {
		h.setState(StateReady)
		h.metrics.rebuildTime(time.Since(j.startTime))
		if h.rebuildQueued {
			h.setState(StateStale)
		}
	}
	return true
}
