// Package host implements the host-adaptor contract: the operations a
// bare-metal caller must supply around disk access, specifically mutual
// exclusion.
//
// A C host ABI would also list malloc/free hooks here. Go's garbage
// collector makes an explicit allocator hook meaningless, so this package
// omits them; FileSystem relies on ordinary Go allocation instead.
package host

import "sync"

// Host is the set of host-provided hooks a FileSystem needs around disk
// access: initialization/teardown and mutual exclusion.
type Host interface {
	// Init is called once before the file system touches the disk. The
	// returned value, if any, is passed back to Lock/Unlock/Done.
	Init() (any, error)
	// Done is called once the file system is finished with the disk.
	Done(data any)
	// Lock acquires exclusive access before a mutating operation.
	Lock(data any) error
	// Unlock releases exclusive access.
	Unlock(data any) error
}

// Nop is a Host whose only initialization is creating an in-process mutex,
// which Lock/Unlock then use to serialize access. It's the default for
// single-threaded or single-process callers.
type Nop struct{}

func (Nop) Init() (any, error) {
	return &sync.Mutex{}, nil
}

func (Nop) Done(any) {}

func (Nop) Lock(data any) error {
	data.(*sync.Mutex).Lock()
	return nil
}

func (Nop) Unlock(data any) error {
	data.(*sync.Mutex).Unlock()
	return nil
}
