package progression

import (
	"github.com/rs/zerolog/log"
)

type job struct {
	name string
	run  func()
}

// Pipeline runs persistence work on a single worker goroutine behind a
// bounded queue. Session hooks hand results off here so a slow database
// never stalls a room's goroutine or its teardown.
type Pipeline struct {
	jobs chan job
	done chan struct{}
}

func NewPipeline(queueSize int) *Pipeline {
	if queueSize <= 0 {
		queueSize = 256
	}
	p := &Pipeline{
		jobs: make(chan job, queueSize),
		done: make(chan struct{}),
	}
	go p.worker()
	return p
}

// Dispatch enqueues a job. Never blocks: when the queue is full the job
// is dropped and logged, keeping the game loop ahead of the database.
func (p *Pipeline) Dispatch(name string, run func()) {
	if p == nil {
		return
	}
	select {
	case p.jobs <- job{name: name, run: run}:
	default:
		log.Error().Str("job", name).Msg("progression queue full, job dropped")
	}
}

func (p *Pipeline) Close() {
	if p == nil {
		return
	}
	close(p.done)
}

func (p *Pipeline) worker() {
	for {
		select {
		case <-p.done:
			return
		case j := <-p.jobs:
			j.run()
		}
	}
}
