package httpserver_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-transfers/cmd/httpserver"
	"github.com/go-petr/pet-transfers/internal/domain"
	"github.com/go-petr/pet-transfers/internal/integrationtest"
)

func requireBalance(t *testing.T, server *httpserver.Server, id string, want int64) {
	t.Helper()

	account, err := server.Accounts.Get(context.Background(), id)
	require.NoError(t, err)
	require.Truef(t, account.Balance.Equal(decimal.NewFromInt(want)),
		"account %s balance %s, want %d", id, account.Balance, want)
}

func TestCreateTransferAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	testCases := []struct {
		name           string
		fromBalance    int64
		body           string
		wantStatusCode int
		wantError      string
		wantFrom       int64
		wantTo         int64
		// wantStatus is checked only when a ledger entry is expected.
		wantLedger bool
		wantStatus domain.Status
		wantReq    domain.TransferRequest
	}{
		{
			name:           "OK",
			fromBalance:    100,
			body:           `{"from":"1","to":"2","amount":90}`,
			wantStatusCode: http.StatusOK,
			wantFrom:       10,
			wantTo:         190,
			wantLedger:     true,
			wantStatus:     domain.StatusCompleted,
			wantReq:        domain.TransferRequest{FromAccountID: "1", ToAccountID: "2", Amount: decimal.NewFromInt(90)},
		},
		{
			name:           "InsufficientFunds",
			fromBalance:    10,
			body:           `{"from":"1","to":"2","amount":90}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInsufficientFunds.Error(),
			wantFrom:       10,
			wantTo:         100,
			wantLedger:     true,
			wantStatus:     domain.StatusError,
			wantReq:        domain.TransferRequest{FromAccountID: "1", ToAccountID: "2", Amount: decimal.NewFromInt(90)},
		},
		{
			name:           "BadRequestObject",
			fromBalance:    100,
			body:           `{"fail":"1","fail":"2","amount":90}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "FromAccountID field is required",
			wantFrom:       100,
			wantTo:         100,
		},
		{
			name:           "SenderMissing",
			fromBalance:    100,
			body:           `{"to":"2","amount":90}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "FromAccountID field is required",
			wantFrom:       100,
			wantTo:         100,
		},
		{
			name:           "ReceiverMissing",
			fromBalance:    100,
			body:           `{"from":"1","amount":90}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ToAccountID field is required",
			wantFrom:       100,
			wantTo:         100,
		},
		{
			name:           "WrongAmount",
			fromBalance:    100,
			body:           `{"from":"1","to":"2","amount":-90}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be positive",
			wantFrom:       100,
			wantTo:         100,
		},
		{
			name:           "SenderNotExist",
			fromBalance:    100,
			body:           `{"from":"3","to":"2","amount":90}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "account 3 not found",
			wantFrom:       100,
			wantTo:         100,
			wantLedger:     true,
			wantStatus:     domain.StatusError,
			wantReq:        domain.TransferRequest{FromAccountID: "3", ToAccountID: "2", Amount: decimal.NewFromInt(90)},
		},
		{
			name:           "ReceiverNotExist",
			fromBalance:    100,
			body:           `{"from":"1","to":"3","amount":90}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "account 3 not found",
			wantFrom:       100,
			wantTo:         100,
			wantLedger:     true,
			wantStatus:     domain.StatusError,
			wantReq:        domain.TransferRequest{FromAccountID: "1", ToAccountID: "3", Amount: decimal.NewFromInt(90)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			integrationtest.Flush(t, server)
			integrationtest.SeedAccount(t, server, "1", tc.fromBalance)
			integrationtest.SeedAccount(t, server, "2", 100)

			var got struct {
				Transfer domain.Transfer `json:"transfer"`
			}

			status, res := send(t, server, http.MethodPost, "/v1/accounts/transfer", tc.body, &got)
			require.Equal(t, tc.wantStatusCode, status)
			require.Equal(t, tc.wantError, res.Error)

			requireBalance(t, server, "1", tc.wantFrom)
			requireBalance(t, server, "2", tc.wantTo)

			transfers := server.Ledger.List(context.Background())
			if !tc.wantLedger {
				require.Empty(t, transfers)
				return
			}

			require.Len(t, transfers, 1)
			require.Equal(t, tc.wantStatus, transfers[0].Status)
			require.Equal(t, tc.wantReq.FromAccountID, transfers[0].Request.FromAccountID)
			require.Equal(t, tc.wantReq.ToAccountID, transfers[0].Request.ToAccountID)
			require.True(t, tc.wantReq.Amount.Equal(transfers[0].Request.Amount))

			require.Equal(t, transfers[0].ID, got.Transfer.ID)
			require.Equal(t, tc.wantStatus, got.Transfer.Status)
		})
	}
}

func TestTransferNotificationsAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)
	integrationtest.SeedAccount(t, server, "1", 100)
	integrationtest.SeedAccount(t, server, "2", 100)

	status, _ := send(t, server, http.MethodPost, "/v1/accounts/transfer", `{"from":"1","to":"2","amount":90}`, nil)
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, server.Dispatcher.Flush(time.Second))
	require.NoError(t, server.Close())

	stats := server.Dispatcher.Stats()
	require.Equal(t, int64(2), stats.Delivered)
	require.Zero(t, stats.Dropped)
}

func TestListTransfersAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)
	integrationtest.SeedAccount(t, server, "1", 100)
	integrationtest.SeedAccount(t, server, "2", 100)

	var created struct {
		Transfer domain.Transfer `json:"transfer"`
	}

	status, _ := send(t, server, http.MethodPost, "/v1/accounts/transfer", `{"from":"1","to":"2","amount":"10.5"}`, &created)
	require.Equal(t, http.StatusOK, status)

	status, _ = send(t, server, http.MethodPost, "/v1/accounts/transfer", `{"from":"2","to":"1","amount":1000}`, nil)
	require.Equal(t, http.StatusBadRequest, status)

	var list struct {
		Transfers []domain.Transfer `json:"transfers"`
	}

	status, _ = send(t, server, http.MethodGet, "/v1/transfers", "", &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Transfers, 2)
	require.Equal(t, created.Transfer.ID, list.Transfers[0].ID)
	require.Equal(t, domain.StatusCompleted, list.Transfers[0].Status)
	require.Equal(t, domain.StatusError, list.Transfers[1].Status)

	var one struct {
		Transfer domain.Transfer `json:"transfer"`
	}

	status, _ = send(t, server, http.MethodGet, "/v1/transfers/"+created.Transfer.ID, "", &one)
	require.Equal(t, http.StatusOK, status)
	require.True(t, decimal.RequireFromString("10.5").Equal(one.Transfer.Request.Amount))

	status, res := send(t, server, http.MethodGet, "/v1/transfers/unknown", "", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, domain.ErrTransferNotFound.Error(), res.Error)
}

func TestMetricsAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)
	integrationtest.SeedAccount(t, server, "1", 100)
	integrationtest.SeedAccount(t, server, "2", 100)

	status, _ := send(t, server, http.MethodPost, "/v1/accounts/transfer", `{"from":"1","to":"2","amount":1}`, nil)
	require.Equal(t, http.StatusOK, status)

	families, err := server.Registry.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}

	joined := strings.Join(names, " ")
	require.Contains(t, joined, server.Config.MetricsNamespace+"_transfers_total")
	require.Contains(t, joined, "go_goroutines")
}
