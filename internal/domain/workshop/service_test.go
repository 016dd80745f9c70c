package workshop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/domain/events"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memOutbox struct {
	events []events.Event
}

func (o *memOutbox) Enqueue(ctx context.Context, evs ...events.Event) error {
	o.events = append(o.events, evs...)
	return nil
}

type memRepo struct {
	tasks map[id.ID]*Task
}

func (r *memRepo) Create(ctx context.Context, t *Task) error {
	r.tasks[t.ID] = t
	return nil
}

func (r *memRepo) Update(ctx context.Context, t *Task) error {
	r.tasks[t.ID] = t
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, taskID id.ID) (*Task, error) {
	t, ok := r.tasks[taskID]
	if !ok {
		return nil, apperror.NewNotFound("task", taskID.String())
	}
	return t, nil
}

func (r *memRepo) GetByIDForUpdate(ctx context.Context, taskID id.ID) (*Task, error) {
	return r.GetByID(ctx, taskID)
}

func (r *memRepo) GetBySale(ctx context.Context, saleID id.ID) ([]Task, error) {
	var out []Task
	for _, t := range r.tasks {
		if t.SaleID == saleID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memRepo) List(ctx context.Context, filter Filter) ([]Task, int, error) {
	return nil, 0, nil
}

type recordingFlagger struct {
	flagged []id.ID
}

func (f *recordingFlagger) MarkWorkshopDone(ctx context.Context, saleID id.ID) error {
	f.flagged = append(f.flagged, saleID)
	return nil
}

func newWorkshopFixture() (*Service, *memRepo, *recordingFlagger, *memOutbox) {
	repo := &memRepo{tasks: map[id.ID]*Task{}}
	flagger := &recordingFlagger{}
	outbox := &memOutbox{}
	svc := NewService(repo, flagger, &numerator.MockGenerator{}, passthroughTx{}, outbox)
	return svc, repo, flagger, outbox
}

func spawnTask(t *testing.T, svc *Service, saleID id.ID) *Task {
	t.Helper()
	task, err := svc.CreateForSale(context.Background(),
		saleID, id.New(), id.New(), id.New(), "Varnish touch-up", "scratch on top", id.New())
	require.NoError(t, err)
	return task
}

func TestTaskLifecycle(t *testing.T) {
	svc, _, flagger, outbox := newWorkshopFixture()
	saleID := id.New()
	master := id.New()

	task := spawnTask(t, svc, saleID)
	assert.Equal(t, StatusPending, task.Status)
	assert.NotEmpty(t, task.Number)

	started, err := svc.Start(context.Background(), task.ID, master)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, started.Status)
	require.NotNil(t, started.AssigneeID)
	assert.Equal(t, master, *started.AssigneeID)
	require.NotNil(t, started.StartedAt)

	done, err := svc.Complete(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	// Last task on the sale flips the sale's workshop flag.
	require.Len(t, flagger.flagged, 1)
	assert.Equal(t, saleID, flagger.flagged[0])

	require.Len(t, outbox.events, 2)
	assert.Equal(t, events.TypeWorkshopTaskCreated, outbox.events[0].Type)
	assert.Equal(t, events.TypeWorkshopTaskDone, outbox.events[1].Type)
}

func TestComplete_RequiresInProgress(t *testing.T) {
	svc, _, flagger, _ := newWorkshopFixture()
	task := spawnTask(t, svc, id.New())

	_, err := svc.Complete(context.Background(), task.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBusinessRule, apperror.Code(err))
	assert.Empty(t, flagger.flagged)
}

func TestStart_OnlyPending(t *testing.T) {
	svc, _, _, _ := newWorkshopFixture()
	task := spawnTask(t, svc, id.New())
	master := id.New()

	_, err := svc.Start(context.Background(), task.ID, master)
	require.NoError(t, err)

	// A second master cannot take an in-progress task.
	_, err = svc.Start(context.Background(), task.ID, id.New())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBusinessRule, apperror.Code(err))
}

func TestSaleFlag_WaitsForAllTasks(t *testing.T) {
	svc, _, flagger, _ := newWorkshopFixture()
	saleID := id.New()
	master := id.New()

	first := spawnTask(t, svc, saleID)
	second := spawnTask(t, svc, saleID)

	_, err := svc.Start(context.Background(), first.ID, master)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), first.ID)
	require.NoError(t, err)

	// One of two done: sale not flagged yet.
	assert.Empty(t, flagger.flagged)

	_, err = svc.Start(context.Background(), second.ID, master)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), second.ID)
	require.NoError(t, err)

	require.Len(t, flagger.flagged, 1)
	assert.Equal(t, saleID, flagger.flagged[0])
}

func TestCancelForSale_SkipsCompletedWork(t *testing.T) {
	svc, repo, _, _ := newWorkshopFixture()
	saleID := id.New()
	master := id.New()

	done := spawnTask(t, svc, saleID)
	pending := spawnTask(t, svc, saleID)

	_, err := svc.Start(context.Background(), done.ID, master)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), done.ID)
	require.NoError(t, err)

	require.NoError(t, svc.CancelForSale(context.Background(), saleID))

	assert.Equal(t, StatusCompleted, repo.tasks[done.ID].Status)
	assert.Equal(t, StatusCancelled, repo.tasks[pending.ID].Status)
}
