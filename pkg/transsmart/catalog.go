package transsmart

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Operation names a remote endpoint.
type Operation string

// Params are optional filter parameters, sent as a URL query string.
type Params map[string]string

// Arg is a positional path argument of an endpoint.
type Arg struct {
	Name    string `json:"name"`
	Default string `json:"default,omitempty"`
}

// Endpoint describes how an operation maps onto an HTTP call.
// Path may reference {account} and each of Args by name.
type Endpoint struct {
	Operation Operation `json:"operation"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Args      []Arg     `json:"args,omitempty"`
	Query     bool      `json:"query"`
	Body      bool      `json:"body"`
	RawJob    bool      `json:"raw_job"`
}

// Call carries the inputs of one invocation.
type Call struct {
	Args  []string    `json:"args,omitempty"`
	Query Params      `json:"query,omitempty"`
	Body  interface{} `json:"body,omitempty"`
}

// Render resolves the endpoint path for account and call, including the query string.
// An empty parameter set produces no query string.
func (e Endpoint) Render(account string, call Call) (string, error) {
	if len(call.Args) > len(e.Args) {
		return "", fmt.Errorf("%w: %s takes %d arguments, got %d", ErrInvalidCall, e.Operation, len(e.Args), len(call.Args))
	}
	if e.Body && call.Body == nil {
		return "", fmt.Errorf("%w: %s requires a body", ErrInvalidCall, e.Operation)
	}
	if !e.Body && call.Body != nil {
		return "", fmt.Errorf("%w: %s takes no body", ErrInvalidCall, e.Operation)
	}
	if !e.Query && len(call.Query) > 0 {
		return "", fmt.Errorf("%w: %s takes no query parameters", ErrInvalidCall, e.Operation)
	}

	replacements := []string{"{account}", url.PathEscape(account)}
	for i, arg := range e.Args {
		var value string
		if i < len(call.Args) {
			value = call.Args[i]
		}
		if value == "" {
			value = arg.Default
		}
		if value == "" {
			return "", fmt.Errorf("%w: %s requires %s", ErrInvalidCall, e.Operation, arg.Name)
		}
		replacements = append(replacements, "{"+arg.Name+"}", url.PathEscape(value))
	}
	path := strings.NewReplacer(replacements...).Replace(e.Path)

	query := url.Values{}
	if e.RawJob {
		query.Set("rawJob", "true")
	}
	for k, v := range call.Query {
		query.Set(k, v)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path, nil
}

// Catalog holds the endpoints known to a client, in registration order.
type Catalog struct {
	endpoints map[Operation]Endpoint
	order     []Operation
	mu        sync.RWMutex
}

// NewCatalog creates a catalog from endpoints.
func NewCatalog(endpoints ...Endpoint) *Catalog {
	c := &Catalog{endpoints: make(map[Operation]Endpoint, len(endpoints))}
	for _, e := range endpoints {
		c.Register(e)
	}
	return c
}

// Register adds an endpoint, replacing any with the same operation.
func (c *Catalog) Register(e Endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.endpoints[e.Operation]; !ok {
		c.order = append(c.order, e.Operation)
	}
	c.endpoints[e.Operation] = e
}

// Get returns the endpoint for op.
func (c *Catalog) Get(op Operation) (Endpoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.endpoints[op]; ok {
		return e, nil
	}
	return Endpoint{}, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
}

// All returns every endpoint.
func (c *Catalog) All() []Endpoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Endpoint, 0, len(c.order))
	for _, op := range c.order {
		result = append(result, c.endpoints[op])
	}
	return result
}

// Names returns every operation name.
func (c *Catalog) Names() []Operation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Operation(nil), c.order...)
}

// Count returns the number of endpoints.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.endpoints)
}
