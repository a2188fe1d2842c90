// Package board derives presentation state from the task collection. It
// owns no persistence: the collection it holds is a mirror of the store,
// mutated optimistically and reconciled against authoritative rows.
package board

import (
	"math"

	"taskboard/internal/models"

	"github.com/gofrs/uuid"
)

type Counts struct {
	Todo   int `json:"todo"`
	Review int `json:"review"`
	Done   int `json:"done"`
	Total  int `json:"total"`
}

// Progress is the overall completion percentage, rounded; 0 when the
// board is empty.
func Progress(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// View mirrors the active task collection for one board.
type View struct {
	tasks   []models.Task
	pending map[uuid.UUID]models.Task
}

func NewView(tasks []models.Task) *View {
	v := &View{
		tasks:   make([]models.Task, len(tasks)),
		pending: make(map[uuid.UUID]models.Task),
	}
	copy(v.tasks, tasks)
	return v
}

func (v *View) Tasks() []models.Task {
	return v.tasks
}

// Columns buckets the active tasks per status, preserving order.
func (v *View) Columns() map[string][]models.Task {
	cols := map[string][]models.Task{
		models.StatusTodo:   {},
		models.StatusReview: {},
		models.StatusDone:   {},
	}
	for _, t := range v.tasks {
		cols[t.Status] = append(cols[t.Status], t)
	}
	return cols
}

func (v *View) Counts() Counts {
	c := Counts{}
	for _, t := range v.tasks {
		switch t.Status {
		case models.StatusTodo:
			c.Todo++
		case models.StatusReview:
			c.Review++
		case models.StatusDone:
			c.Done++
		}
		c.Total++
	}
	return c
}

func (v *View) Progress() int {
	c := v.Counts()
	return Progress(c.Done, c.Total)
}

// ApplyOptimistic flips the local status ahead of server confirmation,
// keeping the pre-mutation copy so a failed update can be reverted.
// Returns false when the id is not on the board.
func (v *View) ApplyOptimistic(id uuid.UUID, status string) bool {
	for i, t := range v.tasks {
		if t.ID == id {
			if _, inFlight := v.pending[id]; !inFlight {
				v.pending[id] = t
			}
			v.tasks[i].Status = status
			return true
		}
	}
	return false
}

// Reconcile overwrites the local copy with the authoritative row and
// clears any pending revert state for it.
func (v *View) Reconcile(authoritative models.Task) {
	delete(v.pending, authoritative.ID)
	for i, t := range v.tasks {
		if t.ID == authoritative.ID {
			v.tasks[i] = authoritative
			return
		}
	}
	v.tasks = append(v.tasks, authoritative)
}

// Revert restores the pre-mutation copy recorded by ApplyOptimistic.
// Safe to call when nothing is pending.
func (v *View) Revert(id uuid.UUID) bool {
	prev, ok := v.pending[id]
	if !ok {
		return false
	}
	delete(v.pending, id)
	for i, t := range v.tasks {
		if t.ID == id {
			v.tasks[i] = prev
			return true
		}
	}
	return false
}

// Add prepends a newly created task; the board lists newest first.
func (v *View) Add(task models.Task) {
	v.tasks = append([]models.Task{task}, v.tasks...)
}

func (v *View) Remove(id uuid.UUID) bool {
	for i, t := range v.tasks {
		if t.ID == id {
			v.tasks = append(v.tasks[:i], v.tasks[i+1:]...)
			delete(v.pending, id)
			return true
		}
	}
	return false
}
