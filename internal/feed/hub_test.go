package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navid-fn/bestex/internal/models"
)

func TestHubDeliversByPair(t *testing.T) {
	hub := NewHub(nil)
	btc := hub.Subscribe("btc-usd", 4)
	eth := hub.Subscribe("ETH/USD", 4)
	defer btc.Unsubscribe()
	defer eth.Unsubscribe()

	n := hub.Publish(models.Quote{VenueID: "kraken", Pair: "BTC/USD", AskPrice: 1})
	assert.Equal(t, 1, n)

	select {
	case q := <-btc.C:
		assert.Equal(t, "kraken", q.VenueID)
	case <-time.After(time.Second):
		t.Fatal("btc subscriber got nothing")
	}
	assert.Empty(t, eth.C)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("BTC/USD", 1)
	defer sub.Unsubscribe()

	assert.Equal(t, 1, hub.Publish(models.Quote{Pair: "BTC/USD"}))
	assert.Equal(t, 0, hub.Publish(models.Quote{Pair: "BTC/USD"}), "publish must not block on a slow subscriber")
}

func TestHubUnsubscribeClosesAndForgets(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("BTC/USD", 1)
	require.Equal(t, 1, hub.Subscribers("BTC/USD"))

	sub.Unsubscribe()
	sub.Unsubscribe()

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers("BTC/USD"))
	assert.Equal(t, 0, hub.Publish(models.Quote{Pair: "BTC/USD"}))
}

func TestHubConcurrentPublishAndUnsubscribe(t *testing.T) {
	hub := NewHub(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		sub := hub.Subscribe("BTC/USD", 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				hub.Publish(models.Quote{Pair: "BTC/USD"})
			}
		}()
		go func() {
			defer wg.Done()
			sub.Unsubscribe()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.Subscribers("BTC/USD"))
}
