package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type JobType string

const (
	// JobTypeRolloverSweep archives an owner's completed, stale tasks.
	JobTypeRolloverSweep JobType = "rollover_sweep"
)

type Job struct {
	ID        string    `json:"id"`
	Type      JobType   `json:"type"`
	Owner     string    `json:"owner"`
	Attempts  int       `json:"attempts"`
	MaxTries  int       `json:"max_tries"`
	CreatedAt time.Time `json:"created_at"`
}

type JobHandler func(ctx context.Context, job *Job) error

// Worker drains board jobs from a Redis list. The board survives without
// it (the sweep also runs on every load); the worker just keeps the
// archive current on boards nobody opens for a while.
type Worker struct {
	client   *redis.Client
	queue    string
	handlers map[JobType]JobHandler
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewWorker(client *redis.Client, queue string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		client:   client,
		queue:    queue,
		handlers: make(map[JobType]JobHandler),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Worker) RegisterHandler(jobType JobType, handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

func (w *Worker) Start(concurrency int) {
	log.Printf("starting board worker with %d goroutines", concurrency)
	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.loop()
	}
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	log.Println("board worker stopped")
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			if err := w.processNext(); err != nil {
				log.Printf("board job error: %v", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) processNext() error {
	result, err := w.client.BLPop(w.ctx, 5*time.Second, w.queue).Result()
	if err != nil {
		if err == redis.Nil || w.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("pop job: %w", err)
	}
	if len(result) < 2 {
		return fmt.Errorf("malformed pop result")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return fmt.Errorf("unmarshal job: %w", err)
	}
	return w.execute(&job)
}

func (w *Worker) execute(job *Job) error {
	w.mu.RLock()
	handler, exists := w.handlers[job.Type]
	w.mu.RUnlock()
	if !exists {
		return fmt.Errorf("no handler for job type %q", job.Type)
	}

	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	if err := handler(ctx, job); err != nil {
		job.Attempts++
		if job.Attempts < job.MaxTries {
			log.Printf("job %s failed (attempt %d/%d), requeueing: %v",
				job.ID, job.Attempts, job.MaxTries, err)
			return w.push(w.queue, job)
		}
		log.Printf("job %s failed permanently after %d attempts: %v",
			job.ID, job.Attempts, err)
		return w.push(w.queue+":dead", job)
	}
	return nil
}

func (w *Worker) push(queue string, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return w.client.RPush(w.ctx, queue, data).Err()
}

// Enqueue queues a sweep for owner on the named queue.
func Enqueue(ctx context.Context, client *redis.Client, queue string, jobType JobType, owner string) error {
	job := &Job{
		ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		Type:      jobType,
		Owner:     owner,
		MaxTries:  3,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return client.RPush(ctx, queue, data).Err()
}

// Scheduler enqueues a rollover sweep for the shared board on a fixed
// interval. Sweeps are idempotent, so overlapping with on-load sweeps is
// harmless.
type Scheduler struct {
	client   *redis.Client
	queue    string
	owner    string
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(client *redis.Client, queue, owner string, interval time.Duration) *Scheduler {
	return &Scheduler{
		client:   client,
		queue:    queue,
		owner:    owner,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := Enqueue(ctx, s.client, s.queue, JobTypeRolloverSweep, s.owner); err != nil {
					log.Printf("enqueue rollover sweep: %v", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}
