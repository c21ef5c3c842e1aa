package rollover

import "github.com/iudanet/lifedash/internal/models"

// resetFitness folds the closing day's completed sessions into the capped
// history and clears the selected session. Hydration is never touched.
func resetFitness(fit *models.Fitness, closing string) {
	day := models.FitnessDay{Date: closing}
	for _, cs := range fit.CompletedSessions {
		if cs.Date == closing {
			day.Sessions++
			day.Minutes += cs.DurationMin
		}
	}

	if day.Sessions > 0 {
		history := make([]models.FitnessDay, 0, len(fit.History)+1)
		for _, h := range fit.History {
			if h.Date != closing {
				history = append(history, h)
			}
		}
		history = append(history, day)
		fit.History = lastN(history, models.FitnessHistoryLimit)
	}

	fit.SelectedSessionID = ""
}

// resetWork partitions tasks for the new day
func resetWork(work *models.Work, today string, report *Report) {
	tasks := make([]models.Task, 0, len(work.Tasks))

	for _, task := range work.Tasks {
		switch {
		case task.Status == models.TaskDone:
			work.History = append(work.History, task)
			report.TasksArchived++
			if task.Ongoing {
				// Повторяющаяся задача продолжается завтра
				task.Status = models.TaskPending
				task.Date = today
				task.CompletedAt = 0
				tasks = append(tasks, task)
				report.TasksCarried++
			}
		case task.Ongoing:
			task.Status = models.TaskPending
			task.Date = today
			tasks = append(tasks, task)
			report.TasksCarried++
		case task.Status == models.TaskMissed:
			tasks = append(tasks, task)
		case task.Date < today:
			task.Status = models.TaskMissed
			tasks = append(tasks, task)
			report.TasksMissed++
		default:
			tasks = append(tasks, task)
		}
	}

	work.Tasks = tasks
	work.History = lastN(work.History, models.WorkHistoryLimit)
	work.Focus = models.DefaultFocusTimer()
}

// resetRoutines snapshots completion flags under the closing date and clears
// them for the new day
func resetRoutines(r *models.Routines, report *Report) {
	if len(r.Habits) == 0 {
		return
	}
	if r.History == nil {
		r.History = map[string]map[string]bool{}
	}

	snapshot := make(map[string]bool, len(r.Habits))
	for i := range r.Habits {
		snapshot[r.Habits[i].ID] = r.Habits[i].Completed
		r.Habits[i].Completed = false
	}

	r.History[report.Closing] = snapshot
	report.HabitsSnapshotted = len(snapshot)
}

// pruneFitness удаляет выполненные тренировки раньше даты отсечки
func pruneFitness(fit *models.Fitness, cutoff string) int {
	kept := fit.CompletedSessions[:0]
	removed := 0
	for _, cs := range fit.CompletedSessions {
		if cs.Date < cutoff {
			removed++
			continue
		}
		kept = append(kept, cs)
	}
	fit.CompletedSessions = kept
	return removed
}

// pruneRoutines удаляет историю привычек раньше даты отсечки
func pruneRoutines(r *models.Routines, cutoff string) int {
	removed := 0
	for date := range r.History {
		if date < cutoff {
			delete(r.History, date)
			removed++
		}
	}
	return removed
}

func lastN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return append([]T(nil), items[len(items)-n:]...)
}
