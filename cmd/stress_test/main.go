package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/nft-marketplace/internal/adapter/registry"
	"github.com/rl1809/nft-marketplace/internal/adapter/storage"
	"github.com/rl1809/nft-marketplace/internal/adapter/wallet"
	"github.com/rl1809/nft-marketplace/internal/core/domain"
	"github.com/rl1809/nft-marketplace/internal/core/ledger"
	"github.com/rl1809/nft-marketplace/internal/core/service"
	"github.com/rl1809/nft-marketplace/internal/port"
)

const (
	marketAddr domain.Address = "0x3a4e7"
	sellerAddr domain.Address = "0x5e11e4"
	collection                = "0xc0ffee"
	queueSize                 = 100
)

func main() {
	totalRequests := flag.Int("buyers", 50, "number of concurrent buyers")
	redisAddr := flag.String("redis", "", "optional redis address for request id deduplication")
	priceFlag := flag.String("price", "1", "listing price in whole currency units")
	decimals := flag.Int("decimals", 6, "currency decimals used to convert -price")
	flag.Parse()

	ctx := context.Background()
	item := domain.NewItemKey(collection, 1)
	price, err := domain.ParseUnits(*priceFlag, int32(*decimals))
	if err != nil {
		log.Fatalf("invalid price: %v", err)
	}

	// Registry with one approved item
	reg := registry.NewMemoryRegistry()
	if err := reg.Mint(item, sellerAddr); err != nil {
		log.Fatalf("failed to mint: %v", err)
	}
	if err := reg.Approve(sellerAddr, item, marketAddr); err != nil {
		log.Fatalf("failed to approve: %v", err)
	}
	funds := wallet.NewMemoryWallet(nil)

	var cache port.CacheRepository
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer rdb.Close()
		cache = storage.NewRedisAdapter(rdb, storage.RedisConfig{IdempotencyTTL: time.Minute})
	}

	l := ledger.New(marketAddr, reg, funds, ledger.WithCommitQueue(queueSize))
	marketService := service.NewMarketService(l, cache, nil)
	defer marketService.Close()

	// Drain the commit queue in background
	go func() {
		for range marketService.GetCommitQueue() {
		}
	}()

	if err := marketService.List(ctx, sellerAddr, item, price); err != nil {
		log.Fatalf("failed to list: %v", err)
	}

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32
	type sale struct {
		buyer   domain.Address
		payment decimal.Decimal
	}
	winner := make(chan sale, *totalRequests)

	// Spawn concurrent buyers
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			buyer := domain.Address(fmt.Sprintf("0xb%04d", n))
			// later buyers overpay, which must not change who wins or what is credited
			payment := price.Add(decimal.NewFromInt(int64(n)))

			err := marketService.Buy(ctx, uuid.NewString(), buyer, item, payment)
			if err == nil {
				successCount.Add(1)
				winner <- sale{buyer: buyer, payment: payment}
			} else {
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)
	close(winner)

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Listing Price:    %s (%s units)\n", domain.FormatUnits(price, int32(*decimals)), price)
	fmt.Printf("Total Buyers:     %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == 1 && fail == int32(*totalRequests-1) {
		fmt.Printf("PASS: Exactly 1 buy succeeded, %d failed\n", fail)
	} else {
		fmt.Printf("FAIL: Expected 1 success/%d fail, got %d/%d\n", *totalRequests-1, success, fail)
	}

	owner, err := reg.OwnerOf(ctx, item)
	if err != nil {
		log.Fatalf("failed to read owner: %v", err)
	}
	w, ok := <-winner
	if ok && w.buyer == owner {
		fmt.Printf("PASS: Item owned by winner %s\n", owner)
	} else {
		fmt.Printf("FAIL: Item owned by %s, winner %s\n", owner, w.buyer)
	}

	if marketService.GetListing(ctx, item).Active() {
		fmt.Println("FAIL: Listing still active")
	} else {
		fmt.Println("PASS: Listing removed")
	}

	proceeds := marketService.GetProceeds(ctx, sellerAddr)
	fmt.Printf("Seller Proceeds:  %s\n", proceeds)
	if ok && proceeds.Equal(w.payment) {
		fmt.Println("PASS: Seller credited exactly the winning payment")
	} else {
		fmt.Printf("FAIL: Unexpected seller proceeds, winning payment %s\n", w.payment)
	}

	if err := marketService.Withdraw(ctx, uuid.NewString(), sellerAddr); err != nil {
		fmt.Printf("FAIL: Withdraw: %v\n", err)
	}
	if released := funds.Balance(sellerAddr); ok && released.Equal(w.payment) {
		fmt.Println("PASS: Withdraw released the winning payment")
	} else {
		fmt.Printf("FAIL: Released %s, winning payment %s\n", released, w.payment)
	}
}
