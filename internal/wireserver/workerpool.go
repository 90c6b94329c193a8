package wireserver

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 256

type workerFunc = func(t *tomb.Tomb, task any) error

// workerPool is a fixed-size pool of goroutines draining a shared task
// channel, supervised by a tomb.Tomb: every worker returns once the
// tomb starts dying, and tasks still queued at that point are not run.
// Grounded on the teacher's internal/worker.go,
// with the spin-loop that respawned workers one at a time replaced by
// spawning the full pool up front — the teacher's version busy-polled
// an activeWorkers counter in a default: branch, which would have
// pegged a CPU core spinning rather than blocking.
type workerPool struct {
	n     int
	tasks chan any
}

func newWorkerPool(size int) workerPool {
	return workerPool{tasks: make(chan any, taskChanSize), n: size}
}

func (p *workerPool) addTask(task any) {
	p.tasks <- task
}

func (p *workerPool) setup(t *tomb.Tomb, work workerFunc) {
	log.Info().Int("workers", p.n).Msg("starting worker pool")
	for i := 0; i < p.n; i++ {
		t.Go(func() error {
			return p.run(t, work)
		})
	}
}

func (p *workerPool) run(t *tomb.Tomb, work workerFunc) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Msg("worker exiting")
				return err
			}
		}
	}
}
