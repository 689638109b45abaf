package main

// Handlers register a waiter before enqueueing so quick jobs can be
// answered within the request instead of forcing a status poll.

func registerJobWaiter(jobID string) chan *Job {
	ch := make(chan *Job, 1)
	jobWaiters.Lock()
	jobWaiters.m[jobID] = append(jobWaiters.m[jobID], ch)
	jobWaiters.Unlock()
	return ch
}

func notifyJobCompletion(job *Job) {
	jobWaiters.Lock()
	waiters := jobWaiters.m[job.ID]
	delete(jobWaiters.m, job.ID)
	jobWaiters.Unlock()
	for _, ch := range waiters {
		select {
		case ch <- job:
		default:
		}
		close(ch)
	}
}

func unregisterJobWaiter(jobID string, ch chan *Job) {
	jobWaiters.Lock()
	waiters := jobWaiters.m[jobID]
	found := false
	for i, c := range waiters {
		if c == ch {
			jobWaiters.m[jobID] = append(waiters[:i], waiters[i+1:]...)
			found = true
			break
		}
	}
	if len(jobWaiters.m[jobID]) == 0 {
		delete(jobWaiters.m, jobID)
	}
	jobWaiters.Unlock()
	// Absent from the map means notifyJobCompletion already took the
	// channel and closed it; closing again would panic.
	if found {
		close(ch)
	}
}
