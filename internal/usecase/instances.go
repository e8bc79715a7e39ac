package usecase

import (
	"sync"

	"github.com/google/uuid"

	"fxapply/internal/domain"
)

type registeredInstance struct {
	instance domain.Instance
	inv      domain.InvocationContext
	settings *domain.EffectSettings
}

// instanceRegister maps temporary handles to live instances while the
// interactive settings step is open.
type instanceRegister struct {
	mu      sync.Mutex
	entries map[domain.InstanceHandle]registeredInstance
}

func newInstanceRegister() *instanceRegister {
	return &instanceRegister{entries: map[domain.InstanceHandle]registeredInstance{}}
}

func (r *instanceRegister) register(inst domain.Instance, inv domain.InvocationContext, settings *domain.EffectSettings) domain.InstanceHandle {
	handle := domain.InstanceHandle(uuid.NewString())
	r.mu.Lock()
	r.entries[handle] = registeredInstance{instance: inst, inv: inv, settings: settings}
	r.mu.Unlock()
	return handle
}

func (r *instanceRegister) unregister(handle domain.InstanceHandle) {
	r.mu.Lock()
	delete(r.entries, handle)
	r.mu.Unlock()
}

func (r *instanceRegister) lookup(handle domain.InstanceHandle) (registeredInstance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[handle]
	return entry, ok
}

func (r *instanceRegister) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
