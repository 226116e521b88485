package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"leadreach/models"
	"leadreach/utils"
)

const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusCanceled  = "canceled"
)

// BatchJob tracks one send-all run. Snapshots are safe to serve while the
// job is still running.
type BatchJob struct {
	mu         sync.Mutex
	ID         string
	LeadID     string
	Status     string
	Total      int
	Completed  int
	Results    []utils.SendResult
	StartedAt  time.Time
	FinishedAt *time.Time
}

// JobSnapshot is the read-only view of a batch job returned by the API.
type JobSnapshot struct {
	ID         string             `json:"id"`
	LeadID     string             `json:"lead_id"`
	Status     string             `json:"status"`
	Total      int                `json:"total"`
	Completed  int                `json:"completed"`
	Results    []utils.SendResult `json:"results"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

func (j *BatchJob) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	results := make([]utils.SendResult, len(j.Results))
	copy(results, j.Results)
	return JobSnapshot{
		ID:         j.ID,
		LeadID:     j.LeadID,
		Status:     j.Status,
		Total:      j.Total,
		Completed:  j.Completed,
		Results:    results,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}
}

// JobRegistry starts send-all jobs in the background and keeps their state
// for polling. Jobs live in memory only.
type JobRegistry struct {
	Sender *utils.OutreachSender
	Hub    *ProgressHub
	Logger *logrus.Logger

	mu   sync.RWMutex
	jobs map[string]*BatchJob
}

func NewJobRegistry(sender *utils.OutreachSender, hub *ProgressHub, logger *logrus.Logger) *JobRegistry {
	return &JobRegistry{
		Sender: sender,
		Hub:    hub,
		Logger: logger,
		jobs:   make(map[string]*BatchJob),
	}
}

// Start launches the batch in a goroutine and returns immediately.
func (r *JobRegistry) Start(ctx context.Context, lead *models.Lead, drafts []utils.EmailDraft) *BatchJob {
	job := &BatchJob{
		ID:        uuid.New().String(),
		LeadID:    lead.ID,
		Status:    JobStatusRunning,
		Total:     len(drafts),
		StartedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	go r.run(ctx, job, lead, drafts)
	return job
}

func (r *JobRegistry) Get(id string) (JobSnapshot, bool) {
	r.mu.RLock()
	job, ok := r.jobs[id]
	r.mu.RUnlock()
	if !ok {
		return JobSnapshot{}, false
	}
	return job.Snapshot(), true
}

func (r *JobRegistry) run(ctx context.Context, job *BatchJob, lead *models.Lead, drafts []utils.EmailDraft) {
	r.Logger.WithFields(logrus.Fields{
		"job_id":  job.ID,
		"lead_id": lead.ID,
		"total":   len(drafts),
	}).Info("Send-all job started")

	_, err := r.Sender.SendAll(ctx, lead, drafts, func(i int, result utils.SendResult) {
		job.mu.Lock()
		job.Results = append(job.Results, result)
		job.Completed++
		completed := job.Completed
		job.mu.Unlock()

		r.Hub.Broadcast(ProgressEvent{
			JobID:   job.ID,
			LeadID:  lead.ID,
			Index:   i,
			Total:   job.Total,
			Percent: completed * 100 / job.Total,
			Status:  JobStatusRunning,
			Result:  result,
		})
	})

	now := time.Now().UTC()
	job.mu.Lock()
	job.FinishedAt = &now
	if err != nil {
		job.Status = JobStatusCanceled
	} else {
		job.Status = JobStatusCompleted
	}
	status := job.Status
	job.mu.Unlock()

	r.Hub.Broadcast(ProgressEvent{
		JobID:   job.ID,
		LeadID:  lead.ID,
		Index:   job.Total - 1,
		Total:   job.Total,
		Percent: 100,
		Status:  status,
	})
	r.Logger.WithFields(logrus.Fields{
		"job_id": job.ID,
		"status": status,
	}).Info("Send-all job finished")
}
