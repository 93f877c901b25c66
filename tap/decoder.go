package tap

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNoDecoder is returned when a registry lookup finds no decoder for the
// requested provider.
var ErrNoDecoder = errors.New("no decoder registered")

// Decoder maps an opaque provider chunk into a normalized Delta. A decoder
// must be a pure function of the chunk: no retained state, safe to call from
// any single stream's consumer.
//
// A returned error means the chunk could not be decoded; the stream treats
// it as a no-op delta and keeps going.
type Decoder interface {
	Decode(chunk any) (Delta, error)
}

// DecoderFunc adapts a plain function to the Decoder interface.
type DecoderFunc func(chunk any) (Delta, error)

// Decode calls f(chunk).
func (f DecoderFunc) Decode(chunk any) (Delta, error) { return f(chunk) }

// Registry is a thread-safe registry of decoders keyed by provider name.
// It supports registering, retrieving, and listing decoders, as well as
// designating a default decoder for convenience.
type Registry struct {
	decoders    map[string]Decoder
	defaultName string
	mu          sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[string]Decoder),
	}
}

// Register adds a decoder to the registry under the given provider name.
// If a decoder with the same name already exists, it is replaced.
func (r *Registry) Register(name string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[name] = d
}

// Get retrieves a decoder by provider name.
func (r *Registry) Get(name string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decoders[name]
	return d, ok
}

// Default returns the default decoder.
// Returns an error if no default has been set or the default name is not registered.
func (r *Registry) Default() (Decoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultName == "" {
		return nil, fmt.Errorf("no default decoder set")
	}
	d, ok := r.decoders[r.defaultName]
	if !ok {
		return nil, fmt.Errorf("default decoder %q not found in registry", r.defaultName)
	}
	return d, nil
}

// SetDefault designates an existing registered decoder as the default.
// Returns an error if the name is not registered.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.decoders[name]; !ok {
		return fmt.Errorf("decoder %q not registered", name)
	}
	r.defaultName = name
	return nil
}

// List returns the sorted names of all registered decoders.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.decoders))
	for name := range r.decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister removes a decoder from the registry.
// If the removed decoder was the default, the default is cleared.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.decoders, name)
	if r.defaultName == name {
		r.defaultName = ""
	}
}

// Len returns the number of registered decoders.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.decoders)
}
