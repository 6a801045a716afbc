package worker

// Task represents a unit of work to be processed by a worker
type Task func()

// Worker is a goroutine that processes tasks from a channel
type Worker struct {
	taskQueue chan Task
	stop      chan struct{}
	stopped   chan struct{}
}

// NewWorker creates a new Worker with a buffered queue
func NewWorker(queueSize int) *Worker {
	return &Worker{
		taskQueue: make(chan Task, queueSize),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

// Start starts the worker to process tasks
func (w *Worker) Start() {
	go func() {
		defer close(w.stopped)
		for {
			select {
			case task := <-w.taskQueue:
				task()
			case <-w.stop:
				// drain what is already queued
				for {
					select {
					case task := <-w.taskQueue:
						task()
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop stops the worker after the queued tasks have run
func (w *Worker) Stop() {
	close(w.stop)
	<-w.stopped
}

// Submit submits a task to the worker
func (w *Worker) Submit(task Task) {
	w.taskQueue <- task
}
