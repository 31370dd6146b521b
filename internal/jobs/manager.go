// Package jobs runs the scheduled background tasks of the order service on
// github.com/robfig/cron/v3.
package jobs

import "fmt"

// Job is a scheduled task with its own cron runner.
type Job interface {
	Start() error
	Stop()
}

// JobManager starts and stops every scheduled job together.
type JobManager struct {
	jobs    []Job
	started []Job
}

func NewJobManager(jobs ...Job) *JobManager {
	return &JobManager{jobs: jobs}
}

// StartAll starts the jobs in order. If one fails the already started jobs
// are stopped again.
func (jm *JobManager) StartAll() error {
	for _, j := range jm.jobs {
		if err := j.Start(); err != nil {
			jm.StopAll()
			return fmt.Errorf("failed to start job %T: %w", j, err)
		}
		jm.started = append(jm.started, j)
	}
	return nil
}

func (jm *JobManager) StopAll() {
	for i := len(jm.started) - 1; i >= 0; i-- {
		jm.started[i].Stop()
	}
	jm.started = nil
}
