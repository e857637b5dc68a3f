package exam2pdf

import "sync"

// ServicePool manages a pool of Service instances for parallel batch
// conversion. Each service owns its own backend resources (a Chrome instance
// when that engine is selected), so pooled services give true parallelism.
// Services are created lazily on first acquire.
type ServicePool struct {
	size    int
	opts    []Option
	sem     chan *Service
	mu      sync.Mutex
	members []*Service
	created int
	closed  bool
}

// NewServicePool creates a pool with capacity for n Service instances, each
// configured with opts. Sizes below 1 are clamped to 1.
func NewServicePool(n int, opts ...Option) *ServicePool {
	if n < 1 {
		n = 1
	}
	return &ServicePool{
		size:    n,
		opts:    opts,
		sem:     make(chan *Service, n),
		members: make([]*Service, 0, n),
	}
}

// Acquire gets a service from the pool, creating one if capacity allows.
// Blocks if all services are in use. Returns nil once the pool has been
// closed.
func (p *ServicePool) Acquire() *Service {
	select {
	case svc, ok := <-p.sem:
		if !ok {
			return nil
		}
		return svc
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		svc := New(p.opts...)

		p.mu.Lock()
		p.members = append(p.members, svc)
		p.mu.Unlock()

		return svc
	}
	p.mu.Unlock()

	svc, ok := <-p.sem
	if !ok {
		return nil
	}
	return svc
}

// Release returns a service to the pool.
func (p *ServicePool) Release(svc *Service) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed {
		p.sem <- svc
	}
}

// Close releases every pooled service's resources.
func (p *ServicePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	members := p.members
	p.mu.Unlock()

	var lastErr error
	for _, svc := range members {
		if err := svc.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Size returns the pool capacity.
func (p *ServicePool) Size() int {
	return p.size
}
