package collab

import "hash/fnv"

type fanoutJob struct {
	clients []*Client
	payload []byte
}

// Fanout delivers one payload to many clients off the caller's goroutine.
// Jobs are sharded by key (the room) onto a fixed worker per shard, so two
// broadcasts for the same room keep their order while different rooms
// proceed in parallel.
type Fanout struct {
	queues []chan fanoutJob
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = 64
	}
	f := &Fanout{queues: make([]chan fanoutJob, workers)}
	for i := range f.queues {
		ch := make(chan fanoutJob, queue)
		f.queues[i] = ch
		go func() {
			for job := range ch {
				for _, c := range job.clients {
					c.Enqueue(job.payload)
				}
			}
		}()
	}
	return f
}

// Broadcast hands the payload to the worker owning key. The per-client
// enqueue never blocks, so a slow socket cannot stall the shard.
func (f *Fanout) Broadcast(key string, clients []*Client, payload []byte) {
	if len(clients) == 0 || len(payload) == 0 {
		return
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	f.queues[int(h.Sum32())%len(f.queues)] <- fanoutJob{clients: clients, payload: payload}
}

func (f *Fanout) Close() {
	for _, ch := range f.queues {
		close(ch)
	}
}
