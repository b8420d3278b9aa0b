package telegram_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edgard/storebot/internal/logger"
	"github.com/edgard/storebot/internal/telegram"
	"github.com/edgard/storebot/internal/telegram/telegramtest"
)

func newClient(t *testing.T) (*telegram.Client, *telegramtest.Server) {
	t.Helper()
	srv := telegramtest.NewServer(t)
	return telegram.NewClient(srv.URL, telegram.NewHTTPClient(5*time.Second), logger.Discard()), srv
}

func TestClientGetMe(t *testing.T) {
	t.Parallel()
	client, srv := newClient(t)

	me, err := client.GetMe(context.Background(), "123456:secret")
	if err != nil {
		t.Fatalf("GetMe error: %v", err)
	}
	if me.ID != 123456 || me.Username != "shop123456_bot" {
		t.Errorf("GetMe = %+v, want id 123456", me)
	}

	calls := srv.Calls("getMe")
	if len(calls) != 1 || calls[0].Token != "123456:secret" {
		t.Errorf("getMe calls = %+v, want one call with the token", calls)
	}
}

func TestClientGetMeRejected(t *testing.T) {
	t.Parallel()
	client, srv := newClient(t)
	srv.On("getMe", func(telegramtest.Call) telegramtest.Response {
		return telegramtest.Fail(401, "Unauthorized")
	})

	if _, err := client.GetMe(context.Background(), "123456:revoked"); err == nil {
		t.Fatal("GetMe with a rejected token should fail")
	}
}

func TestClientGetMeTimeout(t *testing.T) {
	t.Parallel()
	client, srv := newClient(t)
	srv.SetDelay(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetMe(ctx, "123456:slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("GetMe error = %v, want context.DeadlineExceeded", err)
	}
}

func TestClientSetWebhook(t *testing.T) {
	t.Parallel()
	client, srv := newClient(t)

	url := "https://shop.example.com/webhook/shop-1"
	if err := client.SetWebhook(context.Background(), "1:a", url); err != nil {
		t.Fatalf("SetWebhook error: %v", err)
	}
	calls := srv.Calls("setWebhook")
	if len(calls) != 1 || calls[0].Fields["url"] != url {
		t.Errorf("setWebhook calls = %+v, want url %s", calls, url)
	}
}

func TestClientSetWebhookHTTPSRequired(t *testing.T) {
	t.Parallel()
	client, srv := newClient(t)
	srv.On("setWebhook", func(telegramtest.Call) telegramtest.Response {
		return telegramtest.Fail(400, "Bad Request: bad webhook: An HTTPS URL must be provided for webhook")
	})

	err := client.SetWebhook(context.Background(), "1:a", "http://localhost:8080/webhook/shop-1")
	if err == nil {
		t.Fatal("SetWebhook should fail for an http URL")
	}
	if !telegram.IsHTTPSRequired(err) {
		t.Errorf("IsHTTPSRequired(%v) = false, want true", err)
	}
}

func TestClientDeleteWebhook(t *testing.T) {
	t.Parallel()
	client, srv := newClient(t)

	if err := client.DeleteWebhook(context.Background(), "1:a"); err != nil {
		t.Fatalf("DeleteWebhook error: %v", err)
	}
	calls := srv.Calls("deleteWebhook")
	if len(calls) != 1 || calls[0].Fields["drop_pending_updates"] != "true" {
		t.Errorf("deleteWebhook calls = %+v, want drop_pending_updates=true", calls)
	}
}

func TestEmptyToken(t *testing.T) {
	t.Parallel()
	client, srv := newClient(t)

	if _, err := client.GetMe(context.Background(), ""); !errors.Is(err, telegram.ErrEmptyToken) {
		t.Errorf("GetMe(\"\") error = %v, want ErrEmptyToken", err)
	}
	if srv.CallCount() != 0 {
		t.Errorf("empty token reached the Bot API %d times", srv.CallCount())
	}
}

func TestIsHTTPSRequired(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: errors.New("bad request, Bad Request: bad webhook: An HTTPS URL must be provided for webhook"), want: true},
		{err: errors.New("bad request, Bad Request: chat not found"), want: false},
	}
	for _, tt := range tests {
		if got := telegram.IsHTTPSRequired(tt.err); got != tt.want {
			t.Errorf("IsHTTPSRequired(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
