package handler

import (
	"testing"

	"github.com/rl1809/nft-marketplace/internal/adapter/registry"
	"github.com/rl1809/nft-marketplace/internal/adapter/stream"
	"github.com/rl1809/nft-marketplace/internal/adapter/wallet"
	"github.com/rl1809/nft-marketplace/internal/core/domain"
	"github.com/rl1809/nft-marketplace/internal/core/ledger"
	"github.com/rl1809/nft-marketplace/internal/core/service"
	"github.com/rl1809/nft-marketplace/internal/port"
)

const (
	market     domain.Address = "0x3a4e7"
	seller     domain.Address = "0x5e11e4"
	buyer      domain.Address = "0xb0b"
	collection                = "0xc011"
)

type testEnv struct {
	svc      *service.MarketService
	registry *registry.MemoryRegistry
	wallet   *wallet.MemoryWallet
	hub      *stream.Hub
}

// newTestEnv wires a ledger with two minted items owned by seller and
// approved for the marketplace. Committed events reach the hub through a
// running dispatcher.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	reg := registry.NewMemoryRegistry()
	for id := uint64(1); id <= 2; id++ {
		item := domain.NewItemKey(collection, id)
		if err := reg.Mint(item, seller); err != nil {
			t.Fatalf("mint: %v", err)
		}
	}
	reg.SetApprovalForAll(seller, domain.Address(collection), market, true)

	w := wallet.NewMemoryWallet(nil)
	l := ledger.New(market, reg, w, ledger.WithCommitQueue(64))
	svc := service.NewMarketService(l, nil, nil)
	hub := stream.NewHub(16, nil)

	d := service.NewDispatcher(service.DispatcherConfig{}, svc.GetCommitQueue(), nil, []port.EventPublisher{hub}, nil)
	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()

	t.Cleanup(func() {
		svc.Close()
		<-done
		hub.Close()
	})

	return &testEnv{svc: svc, registry: reg, wallet: w, hub: hub}
}
