package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamtunes/internal/shared"
)

// DefaultDirectoryURL is the well-known endpoint listing the replicated
// catalog discovery nodes.
const DefaultDirectoryURL = "https://api.audius.co"

// Resolver discovers and caches the base address of the upstream catalog
// service. The first entry of the directory listing becomes the working
// host for the rest of the process.
//
// The mutex is held across the discovery call, so concurrent callers share
// a single in-flight resolution. There is no periodic refresh and no
// failover to a secondary host once a host is cached; call Invalidate to
// force re-discovery.
type Resolver struct {
	directoryURL string
	httpClient   *http.Client
	logger       *log.Logger

	mu   sync.Mutex
	host string
}

// NewResolver creates a resolver against the given directory endpoint.
// An empty directoryURL falls back to [DefaultDirectoryURL]; a nil client
// falls back to [http.DefaultClient].
func NewResolver(directoryURL string, client *http.Client, logger *log.Logger) *Resolver {
	if directoryURL == "" {
		directoryURL = DefaultDirectoryURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Resolver{
		directoryURL: directoryURL,
		httpClient:   client,
		logger:       logger,
	}
}

// Resolve returns the cached host, performing the discovery call on first
// use. Fails only if the discovery call itself cannot complete.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.host != "" {
		return r.host, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.directoryURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create discovery request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: discovery request failed: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read discovery response: %v", shared.ErrServiceUnavailable, err)
	}

	var listing struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return "", fmt.Errorf("%w: malformed discovery response: %v", shared.ErrServiceUnavailable, err)
	}
	if len(listing.Data) == 0 {
		return "", fmt.Errorf("%w: directory returned no hosts", shared.ErrServiceUnavailable)
	}

	r.host = listing.Data[0]
	r.logger.Info("resolved catalog host", "host", r.host)

	return r.host, nil
}

// Invalidate drops the cached host so the next Resolve call re-discovers.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.host = ""
}
