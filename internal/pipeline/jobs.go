package pipeline

import (
	"sync"
	"time"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusLoading   JobStatus = "loading"
	StatusGrouping  JobStatus = "grouping"
	StatusComparing JobStatus = "comparing"
	StatusStoring   JobStatus = "storing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks the state of a single analysis run.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	RunID string `json:"run_id"`
	Label string `json:"label"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	// Preprocess runs the citation normalization pass before grouping.
	Preprocess bool `json:"preprocess"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks analysis progress.
type Progress struct {
	Elements           int      `json:"elements"`
	ParsedCitations    int      `json:"parsed_citations"`
	Unparseable        int      `json:"unparseable"`
	Rescued            int      `json:"rescued"`
	Comparisons        int64    `json:"comparisons"`
	TotalComparisons   int64    `json:"total_comparisons"`
	SameArticleMatches int64    `json:"same_article_matches"`
	Errors             []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetElements records how many dataset elements were loaded.
func (j *Job) SetElements(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Elements = n
	j.UpdatedAt = time.Now()
}

// SetGrouping records the grouping phase outcome.
func (j *Job) SetGrouping(parsed, unparseable, rescued int, totalComparisons int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ParsedCitations = parsed
	j.Progress.Unparseable = unparseable
	j.Progress.Rescued = rescued
	j.Progress.TotalComparisons = totalComparisons
	j.UpdatedAt = time.Now()
}

// SetComparisons updates the running comparison counters.
func (j *Job) SetComparisons(done, matches int64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Comparisons = done
	j.Progress.SameArticleMatches = matches
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw upload bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw upload bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// ClearFileData drops the upload bytes once processing is done.
func (j *Job) ClearFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	RunID      string    `json:"run_id"`
	Label      string    `json:"label"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	Filename   string    `json:"filename"`
	Preprocess bool      `json:"preprocess"`
	Progress   Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	progress := j.Progress
	progress.Errors = errs
	return JobSnapshot{
		ID:         j.ID,
		RunID:      j.RunID,
		Label:      j.Label,
		Status:     j.Status,
		Phase:      j.Phase,
		Filename:   j.Filename,
		Preprocess: j.Preprocess,
		Progress:   progress,
	}
}
