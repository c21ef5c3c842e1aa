package data

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iudanet/lifedash/internal/client/store"
	"github.com/iudanet/lifedash/internal/clock"
	"github.com/iudanet/lifedash/internal/models"
)

// Service определяет интерфейс для клиентского data сервиса
type Service interface {
	Entity(ctx context.Context, key string) (any, error)
	SetEntity(ctx context.Context, key string, raw json.RawMessage) error

	AddTask(ctx context.Context, title, date string, ongoing bool) (*models.Task, error)
	CompleteTask(ctx context.Context, id string) error
	SetTaskOngoing(ctx context.Context, id string, ongoing bool) error

	AddExpense(ctx context.Context, amount decimal.Decimal, category, note string) (*models.Expense, error)
	SetBudget(ctx context.Context, amount decimal.Decimal) error

	AddHabit(ctx context.Context, name string) (*models.Habit, error)
	ToggleHabit(ctx context.Context, id string) (bool, error)

	LogHydration(ctx context.Context, ml int) (int, error)
	CompleteWorkout(ctx context.Context, name string, durationMin int) (*models.CompletedSession, error)
	LogSleep(ctx context.Context, entry models.SleepEntry) error

	UpdateSettings(ctx context.Context, mutate func(*models.Settings) error) error
}

// service handles typed read-modify-write operations over the store
type service struct {
	store *store.Store
	clock clock.Clock
}

// NewService creates a new data service
func NewService(s *store.Store, clk clock.Clock) Service {
	return &service{
		store: s,
		clock: clk,
	}
}

func (s *service) today() string {
	return s.clock.Now().Format(models.DateLayout)
}

func (s *service) write(ctx context.Context, key string, value any) error {
	if !s.store.Write(ctx, key, value) {
		return fmt.Errorf("%w: %s", ErrWriteFailed, key)
	}
	return nil
}

// Entity returns the typed entity stored under key, defaults applied
func (s *service) Entity(ctx context.Context, key string) (any, error) {
	switch key {
	case models.EntityFitness:
		return store.Read(ctx, s.store, key, models.DefaultFitness()), nil
	case models.EntityWork:
		return store.Read(ctx, s.store, key, models.DefaultWork()), nil
	case models.EntityRoutines:
		return store.Read(ctx, s.store, key, models.DefaultRoutines()), nil
	case models.EntityPlanning:
		return store.Read(ctx, s.store, key, models.DefaultPlanning()), nil
	case models.EntityFinance:
		return store.Read(ctx, s.store, key, models.DefaultFinance()), nil
	case models.EntitySleep:
		return store.Read(ctx, s.store, key, models.DefaultSleep()), nil
	case models.EntitySettings:
		return store.Read(ctx, s.store, key, models.DefaultSettings()), nil
	case models.EntityInsights:
		return store.Read(ctx, s.store, key, models.DefaultInsights()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, key)
	}
}

// SetEntity replaces the whole entity with raw JSON. The JSON must decode
// into the entity's type.
func (s *service) SetEntity(ctx context.Context, key string, raw json.RawMessage) error {
	current, err := s.Entity(ctx, key)
	if err != nil {
		return err
	}

	// Декодируем в значение того же типа, чтобы отсеять мусор
	target := newOfType(current)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, key)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, key, err)
	}

	return s.write(ctx, key, target)
}

func newOfType(v any) any {
	switch v.(type) {
	case models.Fitness:
		return &models.Fitness{}
	case models.Work:
		return &models.Work{}
	case models.Routines:
		return &models.Routines{}
	case models.Planning:
		return &models.Planning{}
	case models.Finance:
		return &models.Finance{}
	case models.Sleep:
		return &models.Sleep{}
	case models.Settings:
		return &models.Settings{}
	case models.Insights:
		return &models.Insights{}
	default:
		return nil
	}
}

// AddTask adds a task for date (today when empty)
func (s *service) AddTask(ctx context.Context, title, date string, ongoing bool) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is empty", ErrInvalidInput)
	}
	if date == "" {
		date = s.today()
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: task date %q", ErrInvalidInput, date)
	}

	task := models.Task{
		ID:      uuid.New().String(),
		Title:   title,
		Date:    date,
		Status:  models.TaskPending,
		Ongoing: ongoing,
	}

	work := store.Read(ctx, s.store, models.EntityWork, models.DefaultWork())
	work.Tasks = append(work.Tasks, task)

	if err := s.write(ctx, models.EntityWork, work); err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteTask marks a task as done
func (s *service) CompleteTask(ctx context.Context, id string) error {
	return s.updateTask(ctx, id, func(t *models.Task) {
		t.Status = models.TaskDone
		t.CompletedAt = s.clock.Now().UnixMilli()
	})
}

// SetTaskOngoing toggles carry-forward of a task
func (s *service) SetTaskOngoing(ctx context.Context, id string, ongoing bool) error {
	return s.updateTask(ctx, id, func(t *models.Task) {
		t.Ongoing = ongoing
	})
}

func (s *service) updateTask(ctx context.Context, id string, mutate func(*models.Task)) error {
	work := store.Read(ctx, s.store, models.EntityWork, models.DefaultWork())

	for i := range work.Tasks {
		if work.Tasks[i].ID == id {
			mutate(&work.Tasks[i])
			return s.write(ctx, models.EntityWork, work)
		}
	}

	return fmt.Errorf("task %s: %w", id, ErrNotFound)
}

// AddExpense records an expense in the current month's ledger
func (s *service) AddExpense(ctx context.Context, amount decimal.Decimal, category, note string) (*models.Expense, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	expense := models.Expense{
		ID:       uuid.New().String(),
		Amount:   amount,
		Date:     s.today(),
		Category: strings.TrimSpace(category),
		Note:     note,
	}

	finance := store.Read(ctx, s.store, models.EntityFinance, models.DefaultFinance())
	ledger := s.currentLedger(&finance)
	ledger.Expenses = append(ledger.Expenses, expense)

	if err := s.write(ctx, models.EntityFinance, finance); err != nil {
		return nil, err
	}
	return &expense, nil
}

// SetBudget sets the current month's budget
func (s *service) SetBudget(ctx context.Context, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: budget must not be negative", ErrInvalidInput)
	}

	finance := store.Read(ctx, s.store, models.EntityFinance, models.DefaultFinance())
	s.currentLedger(&finance).Budget = amount

	return s.write(ctx, models.EntityFinance, finance)
}

// currentLedger возвращает книгу текущего месяца, создавая ее при необходимости
func (s *service) currentLedger(fin *models.Finance) *models.Ledger {
	month := s.clock.Now().Format(models.MonthLayout)
	if fin.Months == nil {
		fin.Months = map[string]*models.Ledger{}
	}

	ledger, ok := fin.Months[month]
	if !ok {
		ledger = &models.Ledger{Month: month, Budget: decimal.Zero, Expenses: []models.Expense{}}
		if prev, ok := fin.Months[fin.CurrentMonth]; ok {
			ledger.Budget = prev.Budget
			ledger.Notes = prev.Notes
		}
		fin.Months[month] = ledger
	}
	fin.CurrentMonth = month

	return ledger
}

// AddHabit adds a daily habit
func (s *service) AddHabit(ctx context.Context, name string) (*models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: habit name is empty", ErrInvalidInput)
	}

	habit := models.Habit{ID: uuid.New().String(), Name: name}

	routines := store.Read(ctx, s.store, models.EntityRoutines, models.DefaultRoutines())
	routines.Habits = append(routines.Habits, habit)

	if err := s.write(ctx, models.EntityRoutines, routines); err != nil {
		return nil, err
	}
	return &habit, nil
}

// ToggleHabit flips today's completion flag of a habit and returns the new value
func (s *service) ToggleHabit(ctx context.Context, id string) (bool, error) {
	routines := store.Read(ctx, s.store, models.EntityRoutines, models.DefaultRoutines())

	for i := range routines.Habits {
		if routines.Habits[i].ID == id {
			routines.Habits[i].Completed = !routines.Habits[i].Completed
			if err := s.write(ctx, models.EntityRoutines, routines); err != nil {
				return false, err
			}
			return routines.Habits[i].Completed, nil
		}
	}

	return false, fmt.Errorf("habit %s: %w", id, ErrNotFound)
}

// LogHydration adds ml to today's intake and returns the new total
func (s *service) LogHydration(ctx context.Context, ml int) (int, error) {
	if ml <= 0 {
		return 0, fmt.Errorf("%w: hydration must be positive", ErrInvalidInput)
	}

	fitness := store.Read(ctx, s.store, models.EntityFitness, models.DefaultFitness())
	if fitness.Hydration == nil {
		fitness.Hydration = map[string]int{}
	}
	today := s.today()
	fitness.Hydration[today] += ml

	if err := s.write(ctx, models.EntityFitness, fitness); err != nil {
		return 0, err
	}
	return fitness.Hydration[today], nil
}

// CompleteWorkout records a completed workout. When name matches a saved
// session it is linked to it, otherwise the selected session is used.
func (s *service) CompleteWorkout(ctx context.Context, name string, durationMin int) (*models.CompletedSession, error) {
	if durationMin <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}

	fitness := store.Read(ctx, s.store, models.EntityFitness, models.DefaultFitness())

	completed := models.CompletedSession{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Date:        s.today(),
		DurationMin: durationMin,
	}
	for _, session := range fitness.Sessions {
		if (completed.Name != "" && session.Name == completed.Name) ||
			(completed.Name == "" && session.ID == fitness.SelectedSessionID) {
			completed.SessionID = session.ID
			completed.Name = session.Name
			break
		}
	}
	if completed.Name == "" {
		return nil, fmt.Errorf("%w: workout name is empty and no session selected", ErrInvalidInput)
	}

	fitness.CompletedSessions = append(fitness.CompletedSessions, completed)

	if err := s.write(ctx, models.EntityFitness, fitness); err != nil {
		return nil, err
	}
	return &completed, nil
}

// LogSleep records a night's sleep, replacing an entry for the same date
func (s *service) LogSleep(ctx context.Context, entry models.SleepEntry) error {
	if entry.Date == "" {
		entry.Date = s.today()
	}
	if _, err := time.Parse(models.DateLayout, entry.Date); err != nil {
		return fmt.Errorf("%w: sleep date %q", ErrInvalidInput, entry.Date)
	}
	for _, hm := range []string{entry.Bedtime, entry.WakeTime} {
		if _, err := time.Parse("15:04", hm); err != nil {
			return fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidInput, hm)
		}
	}
	if entry.Quality < 1 || entry.Quality > 5 {
		return fmt.Errorf("%w: quality must be between 1 and 5", ErrInvalidInput)
	}

	sleep := store.Read(ctx, s.store, models.EntitySleep, models.DefaultSleep())

	replaced := false
	for i := range sleep.Entries {
		if sleep.Entries[i].Date == entry.Date {
			sleep.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		sleep.Entries = append(sleep.Entries, entry)
	}

	return s.write(ctx, models.EntitySleep, sleep)
}

// UpdateSettings applies mutate to the settings and persists them
func (s *service) UpdateSettings(ctx context.Context, mutate func(*models.Settings) error) error {
	settings := store.Read(ctx, s.store, models.EntitySettings, models.DefaultSettings())

	if err := mutate(&settings); err != nil {
		return err
	}
	if !settings.RetentionPolicy.Valid() {
		return fmt.Errorf("%w: retention policy %q", ErrInvalidInput, settings.RetentionPolicy)
	}

	return s.write(ctx, models.EntitySettings, settings)
}
