package accountdelivery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-transfers/internal/domain"
	"github.com/go-petr/pet-transfers/pkg/errorspkg"
	"github.com/go-petr/pet-transfers/pkg/randompkg"
	"github.com/go-petr/pet-transfers/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := web.RegisterValidations(v); err != nil {
			log.Fatalf("web.RegisterValidations() returned error: %v", err)
		}
	}

	os.Exit(m.Run())
}

var equateDecimal = cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) })

func randomAccount() domain.Account {
	return domain.Account{
		ID:      randompkg.AccountID(),
		Balance: randompkg.MoneyAmountBetween(0, 1000),
	}
}

type decimalMatcher struct {
	want decimal.Decimal
}

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return fmt.Sprintf("is equal to %s", m.want)
}

func TestCreate(t *testing.T) {
	account := randomAccount()

	testCases := []struct {
		name           string
		requestBody    string
		buildStubs     func(accountService *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "OK",
			requestBody: fmt.Sprintf(`{"account_id": %q, "balance": %s}`, account.ID, account.Balance),
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(account.ID), decimalMatcher{account.Balance}).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:        "QuotedBalance",
			requestBody: fmt.Sprintf(`{"account_id": %q, "balance": "%s"}`, account.ID, account.Balance),
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(account.ID), decimalMatcher{account.Balance}).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:        "ZeroBalance",
			requestBody: fmt.Sprintf(`{"account_id": %q, "balance": 0}`, account.ID),
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(account.ID), decimalMatcher{decimal.Zero}).
					Times(1).
					Return(domain.Account{ID: account.ID, Balance: decimal.Zero}, nil)
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:        "NoBody",
			requestBody: "",
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "EOF",
		},
		{
			name:        "MissingID",
			requestBody: `{"balance": 100}`,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID field is required",
		},
		{
			name:        "EmptyID",
			requestBody: `{"account_id": "", "balance": 100}`,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID field is required",
		},
		{
			name:        "MissingBalance",
			requestBody: fmt.Sprintf(`{"account_id": %q}`, account.ID),
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Balance field is required",
		},
		{
			name:        "NegativeBalance",
			requestBody: fmt.Sprintf(`{"account_id": %q, "balance": -1}`, account.ID),
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Balance must not be negative",
		},
		{
			name:        "ErrAccountAlreadyExists",
			requestBody: fmt.Sprintf(`{"account_id": %q, "balance": %s}`, account.ID, account.Balance),
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(account.ID), gomock.Any()).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountAlreadyExists)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrAccountAlreadyExists.Error(),
		},
		{
			name:        "InternalServerError",
			requestBody: fmt.Sprintf(`{"account_id": %q, "balance": %s}`, account.ID, account.Balance),
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Create(gomock.Any(), gomock.Eq(account.ID), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errors.New("store is down"))
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Initialize mocks
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			accountService := NewMockService(ctrl)
			accountHandler := NewHandler(accountService)

			server := gin.New()
			server.POST("/accounts", accountHandler.Create)

			tc.buildStubs(accountService)

			// Send request
			req, err := http.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(tc.requestBody))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			// Test response
			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{Data: &data{}}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusCreated {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			got, ok := res.Data.(*data)
			if !ok {
				t.Fatalf(`res.Data=%v, failed type conversion`, res.Data)
			}

			if got.Account.ID != account.ID {
				t.Errorf("res.Data.Account.ID=%q, want %q", got.Account.ID, account.ID)
			}
		})
	}
}

func TestGet(t *testing.T) {
	account := randomAccount()

	testCases := []struct {
		name           string
		accountID      string
		buildStubs     func(accountService *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:      "OK",
			accountID: account.ID,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Get(gomock.Any(), gomock.Eq(account.ID)).
					Times(1).
					Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:      "ErrAccountNotFound",
			accountID: account.ID,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Get(gomock.Any(), gomock.Eq(account.ID)).
					Times(1).
					Return(domain.Account{}, &domain.AccountNotFoundError{IDs: []string{account.ID}})
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      fmt.Sprintf("account %s not found", account.ID),
		},
		{
			name:      "InternalError",
			accountID: account.ID,
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					Get(gomock.Any(), gomock.Eq(account.ID)).
					Times(1).
					Return(domain.Account{}, errors.New("store is down"))
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			accountService := NewMockService(ctrl)
			accountHandler := NewHandler(accountService)

			server := gin.New()
			server.GET("/accounts/:id", accountHandler.Get)

			tc.buildStubs(accountService)

			url := fmt.Sprintf("/accounts/%s", tc.accountID)

			req, err := http.NewRequest(http.MethodGet, url, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{Data: &data{}}

			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error != tc.wantError {
					t.Errorf(`resp.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			got, ok := res.Data.(*data)
			if !ok {
				t.Fatalf(`res.Data=%v, failed type conversion`, res.Data)
			}

			if diff := cmp.Diff(account, got.Account, equateDecimal); diff != "" {
				t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
