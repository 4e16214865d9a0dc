package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chris/tablemate/internal/llm"
	"github.com/chris/tablemate/internal/tools"
)

// Manager keeps named models and routes requests to the active one. It is
// safe for concurrent use, but each model still holds a single conversation.
type Manager struct {
	mu       sync.RWMutex
	models   map[string]*Agent
	order    []string
	active   string
	registry *tools.Registry
	opts     []Option
	wrap     func(llm.Client) llm.Client
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithAgentOptions applies opts to every model the manager creates.
func WithAgentOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.opts = append(m.opts, opts...) }
}

// WithClientWrapper decorates every client built by Register, for example
// with a circuit breaker.
func WithClientWrapper(wrap func(llm.Client) llm.Client) ManagerOption {
	return func(m *Manager) { m.wrap = wrap }
}

func NewManager(registry *tools.Registry, opts ...ManagerOption) *Manager {
	m := &Manager{models: map[string]*Agent{}, registry: registry}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Register builds a client for cfg through llm.NewClient and stores it under
// name. An unknown provider tag fails here, not at request time.
func (m *Manager) Register(name string, cfg llm.ProviderConfig) error {
	client, err := llm.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("registering model %s: %w", name, err)
	}
	if m.wrap != nil {
		client = m.wrap(client)
	}
	return m.Add(name, client)
}

// Add stores an already constructed client under name.
func (m *Manager) Add(name string, client llm.Client) error {
	if name == "" {
		return errors.New("registering model: empty name")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.models[name]; exists {
		return fmt.Errorf("registering model: duplicate name %q", name)
	}
	m.models[name] = New(client, m.registry, m.opts...)
	m.order = append(m.order, name)
	return nil
}

// List returns model names in registration order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

func (m *Manager) SetActive(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.models[name]; !ok {
		return fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	m.active = name
	return nil
}

// Active returns the selected model.
func (m *Manager) Active() (*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == "" {
		return nil, ErrNotConfigured
	}
	return m.models[m.active], nil
}

// Get returns the named model.
func (m *Manager) Get(name string) (*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	return a, nil
}

// Run sends input to the active model as the next turn of its session.
func (m *Manager) Run(ctx context.Context, input string, opts ...RequestOption) (string, error) {
	a, err := m.Active()
	if err != nil {
		return "", err
	}
	return a.MultipleRequests(ctx, input, false, opts...)
}
