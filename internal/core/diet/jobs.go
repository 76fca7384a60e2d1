package diet

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	ErrQueueFull   = errors.New("export queue is full")
	ErrJobNotFound = errors.New("export job not found")
	ErrClosed      = errors.New("export job manager is closed")
)

// JobStatus 匯出工作狀態
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job 匯出工作
type Job struct {
	ID         string     `json:"id"`
	Status     JobStatus  `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Report     *RunReport `json:"report,omitempty"`
	Error      string     `json:"error,omitempty"`
	Path       string     `json:"-"`
}

// Runner 執行一次分類匯出
type Runner interface {
	Run(ctx context.Context, path string) (*RunReport, error)
}

// QueueStatus 隊列狀態
type QueueStatus struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
}

// JobManager 匯出工作管理器；單一 worker 依序執行，避免兩次分類同時打外部服務
type JobManager struct {
	runner    Runner
	dir       string
	queue     chan *Job
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	processed int64

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager 創建新的工作管理器
func NewJobManager(runner Runner, dir string, queueSize int) *JobManager {
	if queueSize < 1 {
		queueSize = 1
	}
	return &JobManager{
		runner: runner,
		dir:    dir,
		queue:  make(chan *Job, queueSize),
		done:   make(chan struct{}),
		jobs:   make(map[string]*Job),
	}
}

// Start 啟動 worker
func (m *JobManager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.worker(ctx)
}

// Enqueue 建立工作並加入隊列
func (m *JobManager) Enqueue() (Job, error) {
	select {
	case <-m.done:
		return Job{}, ErrClosed
	default:
	}

	id := common.GenerateUUID()
	job := &Job{
		ID:        id,
		Status:    JobQueued,
		CreatedAt: time.Now(),
		Path:      filepath.Join(m.dir, id+".csv"),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case m.queue <- job:
	default:
		return Job{}, ErrQueueFull
	}
	m.jobs[id] = job

	common.LogInfo("匯出工作已加入隊列",
		zap.String("job_id", id),
		zap.Int("queue_length", len(m.queue)),
		zap.Int("max_queue_size", cap(m.queue)),
	)
	return *job, nil
}

// Get 獲取工作快照
func (m *JobManager) Get(id string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// Status 獲取隊列狀態
func (m *JobManager) Status() QueueStatus {
	return QueueStatus{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   cap(m.queue),
	}
}

// Close 停止接收新工作並等待執行中的工作結束
func (m *JobManager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
	m.wg.Wait()
}

func (m *JobManager) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case job := <-m.queue:
			m.run(ctx, job)
		}
	}
}

func (m *JobManager) run(ctx context.Context, job *Job) {
	m.update(job.ID, func(j *Job) {
		now := time.Now()
		j.Status = JobRunning
		j.StartedAt = &now
	})

	report, err := m.runner.Run(ctx, job.Path)

	m.update(job.ID, func(j *Job) {
		now := time.Now()
		j.FinishedAt = &now
		if err != nil {
			j.Status = JobFailed
			j.Error = err.Error()
			return
		}
		j.Status = JobSucceeded
		j.Report = report
	})
	atomic.AddInt64(&m.processed, 1)

	if err != nil {
		common.LogError("匯出工作失敗", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	common.LogInfo(common.MsgExportJobDone, zap.String("job_id", job.ID), zap.String("path", job.Path))
}

func (m *JobManager) update(id string, fn func(j *Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		fn(job)
	}
}
