// internal/schedule/scheduler.go
package schedule

import "sort"

// Scheduler — однопоточная очередь отложенных задач. Игровой цикл зовёт
// Advance с дельтой времени; созревшие задачи выполняются синхронно, в
// порядке срока (при равных сроках — в порядке постановки). Никаких горутин:
// задача никогда не перебьёт идущую последовательность attach/match/audit.
type Scheduler struct {
	now     float64
	nextSeq uint64
	tasks   []*Task
}

// Task — отложенный вызов. Cancel идемпотентен: повторная отмена и отмена
// уже сработавшей задачи — no-op.
type Task struct {
	dueAt    float64
	seq      uint64
	fn       func()
	canceled bool
	fired    bool
}

// Cancel снимает задачу с очереди.
func (t *Task) Cancel() {
	t.canceled = true
}

// Fired reports whether the task has already run.
func (t *Task) Fired() bool {
	return t.fired
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now возвращает накопленное время планировщика, секунды.
func (s *Scheduler) Now() float64 {
	return s.now
}

// Schedule ставит fn на выполнение через delay секунд. Неположительная
// задержка означает "при следующем Advance".
func (s *Scheduler) Schedule(delay float64, fn func()) *Task {
	if delay < 0 {
		delay = 0
	}
	t := &Task{
		dueAt: s.now + delay,
		seq:   s.nextSeq,
		fn:    fn,
	}
	s.nextSeq++
	s.tasks = append(s.tasks, t)
	return t
}

// Advance продвигает время и выполняет созревшие задачи. Задача, поставленная
// изнутри другой задачи, выполнится не раньше следующего Advance — даже с
// нулевой задержкой. Это сохраняет кооперативную гранулярность: один Advance
// не может зациклиться на самоподдерживающихся задачах.
func (s *Scheduler) Advance(dt float64) {
	if dt < 0 {
		return
	}
	s.now += dt

	due := make([]*Task, 0, len(s.tasks))
	rest := s.tasks[:0]
	for _, t := range s.tasks {
		if t.canceled {
			continue
		}
		if t.dueAt <= s.now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	s.tasks = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].dueAt != due[j].dueAt {
			return due[i].dueAt < due[j].dueAt
		}
		return due[i].seq < due[j].seq
	})

	for _, t := range due {
		if t.canceled {
			// Отменена более ранней задачей этого же Advance.
			continue
		}
		t.fired = true
		t.fn()
	}
}

// Pending возвращает число задач в очереди (без отменённых).
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.canceled {
			n++
		}
	}
	return n
}
