package checkout

import "sync"

// keyedMutex hands out one mutex per session key and forgets it once
// nobody holds or waits on it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// generations tags each request with an id unique across keys and records
// the latest one per key, so a slow response can tell whether it is still
// the newest. Ids are never reused, which keeps forget safe while an older
// request is in flight.
type generations struct {
	mu  sync.Mutex
	seq uint64
	m   map[string]uint64
}

func (g *generations) next(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.m == nil {
		g.m = make(map[string]uint64)
	}
	g.seq++
	g.m[key] = g.seq
	return g.seq
}

func (g *generations) current(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m[key]
}

// forget drops the key once its sale is over.
func (g *generations) forget(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.m, key)
}
