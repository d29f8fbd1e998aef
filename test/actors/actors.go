// Package actors drives the registry services concurrently for stress tests.
package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"notaryregistry/auth"
	"notaryregistry/document"
)

// Stats counts outcomes across actors.
type Stats struct {
	Registered atomic.Int64
	Failed     atomic.Int64
	Logins     atomic.Int64
	Reads      atomic.Int64
}

// Registrar registers documents for userID until stop is closed. Individual
// failures are counted, not returned, so backend terminations do not abort
// the run.
func Registrar(ctx context.Context, svc *document.Service, userID int64, rng *rand.Rand, stats *Stats, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		_, err := svc.Create(ctx, document.CreateParams{
			DocumentType:   "Доверенность",
			DocumentDate:   time.Now().UTC().Format(time.DateOnly),
			Party1Name:     fmt.Sprintf("Сторона %d", rng.Intn(1000)),
			Party1Passport: fmt.Sprintf("N%07d", rng.Intn(10_000_000)),
			Subject:        "Нагрузочный тест",
			CreatedBy:      userID,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			stats.Failed.Add(1)
		} else {
			stats.Registered.Add(1)
		}
		time.Sleep(time.Duration(5+rng.Intn(15)) * time.Millisecond)
	}
}

// Reader lists documents with a random filter.
func Reader(ctx context.Context, svc *document.Service, rng *rand.Rand, stats *Stats, stop <-chan struct{}) error {
	filters := []document.Filter{
		{},
		{Status: "registered"},
		{Type: document.AnyType, Status: document.AnyStatus},
		{Search: "N-"},
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if _, err := svc.List(ctx, filters[rng.Intn(len(filters))]); err == nil {
			stats.Reads.Add(1)
		}
		time.Sleep(time.Duration(10+rng.Intn(20)) * time.Millisecond)
	}
}

// LoginLoop logs in repeatedly and verifies each issued token.
func LoginLoop(ctx context.Context, svc *auth.Service, req auth.LoginRequest, rng *rand.Rand, stats *Stats, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		res, err := svc.Login(ctx, req)
		if err == nil {
			if _, err := svc.VerifyToken(res.Token); err != nil {
				return fmt.Errorf("login loop: issued token rejected: %w", err)
			}
			stats.Logins.Add(1)
		} else if errors.Is(err, auth.ErrInvalidCredentials) {
			return fmt.Errorf("login loop: %w", err)
		}
		time.Sleep(time.Duration(20+rng.Intn(30)) * time.Millisecond)
	}
}
