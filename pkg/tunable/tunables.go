package tunable

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Tunable is an integer setting that can be nudged while the robot is running.
type Tunable struct {
	Name     string
	Value    int64
	Min, Max int

	log logrus.FieldLogger
}

func (t *Tunable) Add(delta int) int {
	for {
		old := atomic.LoadInt64(&t.Value)
		newV := clamp(int(old)+delta, t.Min, t.Max)
		if atomic.CompareAndSwapInt64(&t.Value, old, int64(newV)) {
			if t.log != nil {
				t.log.WithField("tunable", t.Name).Infof("Tunable %s = %d", t.Name, newV)
			}
			return newV
		}
	}
}

func (t *Tunable) Get() int {
	return int(atomic.LoadInt64(&t.Value))
}

type Tunables struct {
	All      []*Tunable
	selected int

	Log logrus.FieldLogger
}

func (t *Tunables) Create(name string, value, min, max int) *Tunable {
	newTunable := &Tunable{
		Name:  name,
		Value: int64(clamp(value, min, max)),
		Min:   min,
		Max:   max,
		log:   t.Log,
	}
	t.All = append(t.All, newTunable)
	return newTunable
}

func (t *Tunables) SelectNext() {
	t.selected++
	if t.selected >= len(t.All) {
		t.selected = 0
	}
	t.logSelected()
}

func (t *Tunables) SelectPrev() {
	t.selected--
	if t.selected < 0 {
		t.selected = len(t.All) - 1
	}
	t.logSelected()
}

func (t *Tunables) Current() *Tunable {
	return t.All[t.selected]
}

func (t *Tunables) logSelected() {
	if t.Log == nil {
		return
	}
	t.Log.Infof("Tunable %s selected, value: %d", t.Current().Name, t.Current().Get())
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
