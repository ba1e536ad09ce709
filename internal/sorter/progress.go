package sorter

import (
	"maps"
	"slices"
	"time"
)

// percentLocked returns min(99, floor(animated/total*100)), or 100 once the
// sort has completed.
func (s *Sorter) percentLocked() int {
	if s.completed {
		return 100
	}
	if s.totalBattles <= 0 {
		return 0
	}
	return min(99, s.animatedNo*100/s.totalBattles)
}

func (s *Sorter) removedLocked() []string {
	out := slices.Sorted(maps.Keys(s.removed))
	if out == nil {
		out = []string{}
	}
	return out
}

// notice is a batch of callbacks captured under the lock and fired after
// it is released.
type notice struct {
	progress  ProgressFunc
	completed int
	percent   int
	save      SaveFunc
	restart   RestartFunc
}

func (s *Sorter) noticeLocked(progress, save, restart bool) notice {
	var n notice
	if progress && s.onProgress != nil {
		n.progress = s.onProgress
		n.completed = s.animatedNo
		n.percent = s.percentLocked()
	}
	if save {
		n.save = s.onSave
	}
	if restart {
		n.restart = s.onRestart
	}
	return n
}

func (n notice) fire() {
	if n.progress != nil {
		n.progress(n.completed, n.percent)
	}
	if n.save != nil {
		n.save()
	}
	if n.restart != nil {
		n.restart()
	}
}

// animate moves AnimatedSortedNo from `from` toward `to` in linear steps,
// emitting progress after each one. With a zero duration the steps run
// inline. Otherwise they run on a ticker goroutine and overlapping
// animations are refused.
func (s *Sorter) animate(from, to int) {
	s.mu.Lock()
	if s.animating || to <= from {
		s.mu.Unlock()
		return
	}
	steps, duration := s.animSteps, s.animDuration

	if duration <= 0 {
		s.mu.Unlock()
		for i := 1; i <= steps; i++ {
			s.animateStep(from, to, i, steps, nil)
		}
		return
	}

	stop := make(chan struct{})
	s.animating = true
	s.animStop = stop
	s.animWG.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.animWG.Done()
		ticker := time.NewTicker(duration / time.Duration(steps))
		defer ticker.Stop()

		for i := 1; i <= steps; i++ {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
			if !s.animateStep(from, to, i, steps, stop) {
				return
			}
		}

		s.mu.Lock()
		if s.animStop == stop {
			s.animating = false
			s.animStop = nil
		}
		s.mu.Unlock()
	}()
}

// animateStep applies step i of steps. The animated count only ever rises.
// Returns false if the animation was stopped.
func (s *Sorter) animateStep(from, to, i, steps int, stop chan struct{}) bool {
	s.mu.Lock()
	if stop != nil {
		select {
		case <-stop:
			s.mu.Unlock()
			return false
		default:
		}
	}
	if v := from + (to-from)*i/steps; v > s.animatedNo {
		s.animatedNo = v
	}
	n := s.noticeLocked(true, false, false)
	s.mu.Unlock()

	n.fire()
	return true
}

// stopAnimationLocked cancels a running animation without touching the
// animated count.
func (s *Sorter) stopAnimationLocked() {
	if s.animStop != nil {
		close(s.animStop)
		s.animStop = nil
	}
	s.animating = false
}
