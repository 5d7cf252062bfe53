// Package contracts describes the token and NFT contracts the market talks
// to. The market never trusts a depositing contract until it answers a
// minimal introspection query.
package contracts

//go:generate mockgen -source=inspector.go -destination=mock_inspector.go -package=contracts

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrUnknownContract is returned when introspection of a contract fails.
var ErrUnknownContract = errors.New("unknown contract")

// TokenInfo is the answer of a fungible token contract to an info query.
type TokenInfo struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// NftContractInfo is the answer of an NFT contract to an info query.
type NftContractInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Inspector issues introspection queries against contracts.
type Inspector interface {
	TokenInfo(ctx context.Context, contract string) (*TokenInfo, error)
	NftContractInfo(ctx context.Context, contract string) (*NftContractInfo, error)
	// Minter returns the address allowed to mint in an NFT collection.
	Minter(ctx context.Context, contract string) (string, error)
}

// NftCollection is a statically known NFT contract.
type NftCollection struct {
	Info   NftContractInfo
	Minter string
}

// Static answers introspection queries from a fixed set of contracts. It is
// the binding used by the daemon, where the contract set comes from config.
type Static struct {
	mu     sync.RWMutex
	tokens map[string]TokenInfo
	nfts   map[string]NftCollection
}

// NewStatic returns an empty Static inspector.
func NewStatic() *Static {
	return &Static{
		tokens: make(map[string]TokenInfo),
		nfts:   make(map[string]NftCollection),
	}
}

// AddToken registers a fungible token contract.
func (s *Static) AddToken(contract string, info TokenInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[contract] = info
}

// AddNft registers an NFT contract and its minter.
func (s *Static) AddNft(contract string, collection NftCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nfts[contract] = collection
}

func (s *Static) TokenInfo(_ context.Context, contract string) (*TokenInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.tokens[contract]
	if !ok {
		return nil, ErrUnknownContract
	}
	return &info, nil
}

func (s *Static) NftContractInfo(_ context.Context, contract string) (*NftContractInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.nfts[contract]
	if !ok {
		return nil, ErrUnknownContract
	}
	info := c.Info
	return &info, nil
}

func (s *Static) Minter(_ context.Context, contract string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.nfts[contract]
	if !ok {
		return "", ErrUnknownContract
	}
	return c.Minter, nil
}

// Contracts lists every registered contract, tokens first, each group sorted.
func (s *Static) Contracts() (tokens, nfts []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.tokens {
		tokens = append(tokens, c)
	}
	for c := range s.nfts {
		nfts = append(nfts, c)
	}
	sort.Strings(tokens)
	sort.Strings(nfts)
	return tokens, nfts
}
