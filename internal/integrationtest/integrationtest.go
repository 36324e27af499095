// Package integrationtest provides server helpers used in integration tests.
package integrationtest

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-transfers/cmd/httpserver"
	"github.com/go-petr/pet-transfers/internal/domain"
	"github.com/go-petr/pet-transfers/internal/middleware"
	"github.com/go-petr/pet-transfers/pkg/configpkg"
)

// SetupServer returns test server that is closed after the test.
func SetupServer(t *testing.T) *httpserver.Server {
	t.Helper()

	config, err := configpkg.Load("../../configs")
	if err != nil {
		t.Fatalf(`configpkg.Load("../../configs") returned error: %v`, err)
	}

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.GetLogger(config)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(logger, config) returned error: %v`, err)
	}

	t.Cleanup(func() {
		if err := server.Close(); err != nil {
			t.Errorf("server.Close() returned error: %v", err)
		}
	})

	return server
}

// Flush removes all accounts and recorded transfers.
func Flush(t *testing.T, server *httpserver.Server) {
	t.Helper()

	ctx := context.Background()
	server.Accounts.Clear(ctx)
	server.Ledger.Clear(ctx)
}

// SeedAccount creates the account directly in the store.
func SeedAccount(t *testing.T, server *httpserver.Server, id string, balance int64) domain.Account {
	t.Helper()

	account, err := server.Accounts.Create(context.Background(), id, decimal.NewFromInt(balance))
	if err != nil {
		t.Fatalf("server.Accounts.Create(%q, %d) returned error: %v", id, balance, err)
	}

	return account
}
