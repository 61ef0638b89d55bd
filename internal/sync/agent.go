// Package sync implements the client-side polling agent: fetch the
// current alert on a fixed interval, hold on to the last known good
// value across transient failures, and retry eagerly while the backend
// is cold-starting.
package sync

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/yourorg/meteo-alertes/internal/model"
	"github.com/yourorg/meteo-alertes/internal/network"
)

// Update is one observation delivered to the consumer.
type Update struct {
	// Record is the state to render. When Stale is set it is the last
	// known good value, not a fresh fetch.
	Record model.AlertRecord

	// Wilayas is the last successfully fetched geo dataset, nil until
	// one has been obtained.
	Wilayas []model.Wilaya

	// Stale marks a poll failure bridged by cached state: render Record
	// with a non-blocking "reconnecting" indication.
	Stale bool

	// Err is set only when a poll failed and nothing good has ever been
	// fetched; the consumer shows an explicit error state.
	Err error
}

// Agent polls the server and reconciles against cached state. One agent
// per client session; it is not shared.
type Agent struct {
	client   *network.Client
	interval time.Duration

	lastGood            *model.AlertRecord
	lastWilayas         []model.Wilaya
	consecutiveFailures int

	out chan Update
}

// New creates an agent polling at the given interval.
func New(client *network.Client, interval time.Duration) *Agent {
	return &Agent{
		client:   client,
		interval: interval,
		out:      make(chan Update, 8),
	}
}

// Updates is the stream of observations. Closed when Run returns.
func (a *Agent) Updates() <-chan Update {
	return a.out
}

// Run polls until ctx is cancelled. The loop is serial: a tick never
// overlaps an in-flight fetch, so last-known-good state cannot be
// updated out of order. Before the first successful fetch it retries on
// an exponential backoff instead of the fixed interval, to ride out a
// cold-starting backend.
func (a *Agent) Run(ctx context.Context) {
	defer close(a.out)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = a.interval
	bo.MaxElapsedTime = 0

	for a.lastGood == nil {
		if ctx.Err() != nil {
			return
		}
		if a.poll(ctx) {
			break
		}
		select {
		case <-time.After(bo.NextBackOff()):
		case <-ctx.Done():
			return
		}
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.poll(ctx)
		}
	}
}

// poll performs one fetch cycle and emits an update. Returns whether
// the fetch succeeded.
func (a *Agent) poll(ctx context.Context) bool {
	rec, err := a.client.FetchAlert(ctx)
	if err != nil {
		a.consecutiveFailures++
		if a.lastGood != nil {
			log.Printf("WARNING: alert fetch failed (%d in a row), keeping last known good: %v", a.consecutiveFailures, err)
			a.emit(Update{Record: *a.lastGood, Wilayas: a.lastWilayas, Stale: true})
		} else {
			log.Printf("WARNING: alert fetch failed with no cached state: %v", err)
			a.emit(Update{Record: model.Default(), Err: err})
		}
		return false
	}

	a.lastGood = &rec
	a.consecutiveFailures = 0

	// The geo dataset is only needed while an alert names wilayas, and
	// once fetched it is kept for the session. Failures stay silent:
	// the alert itself still renders.
	if rec.Active && len(rec.Regions) > 0 && a.lastWilayas == nil {
		if ws, err := a.client.FetchWilayas(ctx); err != nil {
			log.Printf("WARNING: wilaya dataset fetch failed, will retry next cycle: %v", err)
		} else {
			a.lastWilayas = ws
		}
	}

	a.emit(Update{Record: rec, Wilayas: a.lastWilayas})
	return true
}

func (a *Agent) emit(u Update) {
	select {
	case a.out <- u:
	default:
		// Consumer is behind; drop rather than block the poll loop.
	}
}
