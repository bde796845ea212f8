package pipeline

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/candgest/internal/extraction"
)

// JobStatus represents the state of an extraction job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusRendering  JobStatus = "rendering"
	StatusExtracting JobStatus = "extracting"
	StatusWriting    JobStatus = "writing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks the state of a single uploaded document.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	UnitCode string `json:"unit_code"`
	Force    bool   `json:"force"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	RunID       string    `json:"run_id,omitempty"`
	OutputPath  string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Pages            int      `json:"pages"`
	Lines            int      `json:"lines"`
	Records          int      `json:"records"`
	Dropped          int      `json:"dropped"`
	ClassifierErrors int      `json:"classifier_errors"`
	Errors           []string `json:"errors"`
}

// NewJob creates a queued job holding an uploaded file.
func NewJob(unitCode, filename string, data []byte, force bool) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		UnitCode:  unitCode,
		Force:     force,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
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
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
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

// SetRendered records the size of the rendered document.
func (j *Job) SetRendered(pages, lines int, hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Pages = pages
	j.Progress.Lines = lines
	j.ContentHash = hash
	j.UpdatedAt = time.Now()
}

// SetExtracted records the outcome of the extraction phase.
func (j *Job) SetExtracted(stats extraction.Stats) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Records = stats.Records
	j.Progress.Dropped = stats.Dropped
	j.Progress.ClassifierErrors = stats.ClassifierErrors
	j.UpdatedAt = time.Now()
}

// SetResult records where the finished run lives.
func (j *Job) SetResult(runID, outputPath string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.RunID = runID
	j.OutputPath = outputPath
	j.UpdatedAt = time.Now()
}

// Result returns the run ID and output path once the job completed. A
// duplicate job points at the earlier run's output.
func (j *Job) Result() (runID, outputPath string, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	done := j.Status == StatusCompleted || j.Status == StatusDupSkipped
	return j.RunID, j.OutputPath, done && j.OutputPath != ""
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFileData drops the upload once it has been rendered.
func (j *Job) releaseFileData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	UnitCode    string    `json:"unit_code"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash,omitempty"`
	RunID       string    `json:"run_id,omitempty"`
	Progress    Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:          j.ID,
		UnitCode:    j.UnitCode,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		RunID:       j.RunID,
		Progress:    p,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}
