package review

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"review-core/internal/manifest"
)

// fakeMetadata serves canned metadata and can be told to fail per address.
type fakeMetadata struct {
	mu        sync.Mutex
	resources map[string]ResourceMetadata
	entities  map[string]EntityMetadata
	failing   map[string]bool
	calls     map[string]int
}

func newFakeMetadata() *fakeMetadata {
	return &fakeMetadata{
		resources: make(map[string]ResourceMetadata),
		entities:  make(map[string]EntityMetadata),
		failing:   make(map[string]bool),
		calls:     make(map[string]int),
	}
}

func (f *fakeMetadata) FetchResourceMetadata(_ context.Context, addr string) (*ResourceMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[addr]++
	if f.failing[addr] {
		return nil, errors.New("gateway unavailable")
	}
	md, ok := f.resources[addr]
	if !ok {
		return nil, errors.New("not found")
	}
	return &md, nil
}

func (f *fakeMetadata) FetchEntityMetadata(_ context.Context, addr string) (*EntityMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[addr]++
	if f.failing[addr] {
		return nil, errors.New("gateway unavailable")
	}
	md, ok := f.entities[addr]
	if !ok {
		return nil, errors.New("not found")
	}
	return &md, nil
}

func (f *fakeMetadata) callCount(addr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[addr]
}

// fakeStore is an in-memory owned-accounts store.
type fakeStore struct {
	accounts []OwnedAccount
	err      error
}

func (f *fakeStore) ResolveOwnedAccounts(context.Context) ([]OwnedAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts, nil
}

// fakePreview returns a fixed preview result or error.
type fakePreview struct {
	result *PreviewResult
	err    error
}

func (f *fakePreview) PreviewManifest(context.Context, manifest.Manifest) (*PreviewResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func fungible(name string, divisibility int32) ResourceMetadata {
	return ResourceMetadata{Name: name, Kind: ResourceFungible, Divisibility: divisibility}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
