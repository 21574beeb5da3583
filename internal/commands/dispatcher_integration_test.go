package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type unlockRequest struct {
	MilestoneID string
}

func (unlockRequest) Type() string { return "onboarding.test.unlock_request" }

func (unlockRequest) Validate() error { return nil }

func TestDispatcherRetriesThroughHandler(t *testing.T) {
	cases := []struct {
		name       string
		retries    int
		failures   int
		wantErr    bool
		wantCalled int
	}{
		{name: "transient storage error recovers", retries: 1, failures: 1, wantCalled: 2},
		{name: "retries exhausted", retries: 2, failures: 10, wantErr: true, wantCalled: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int
			handler := NewHandler(func(context.Context, unlockRequest) error {
				calls++
				if calls <= tc.failures {
					return errors.New("storage unavailable")
				}
				return nil
			}, WithTimeout[unlockRequest](time.Second))

			sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(tc.retries))
			defer sub.Unsubscribe()

			err := dispatcher.Dispatch(context.Background(), unlockRequest{MilestoneID: "welcome_call"})
			if (err != nil) != tc.wantErr {
				t.Fatalf("dispatch error = %v, wantErr %v", err, tc.wantErr)
			}
			if calls != tc.wantCalled {
				t.Fatalf("expected %d calls, got %d", tc.wantCalled, calls)
			}
		})
	}
}
