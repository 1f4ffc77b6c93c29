package cli_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/catalog"
	"github.com/magabrotheeeer/subscription-tracker/internal/cli"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/report"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2024, time.June, 15, 14, 0, 0, 0, time.UTC)
}

// newShell собирает оболочку поверх настоящих сервисов и файла SQLite во временном каталоге.
func newShell(t *testing.T, in io.Reader) (*cli.Shell, *bytes.Buffer) {
	t.Helper()

	storage, err := repository.New(context.Background(), filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	require.NoError(t, migrations.Run(storage.DB))

	log := newNoopLogger()
	cat := catalog.Default()
	authSvc := auth.NewService(storage, password.Plain{}, log)
	ledger := subscription.NewService(storage, cat, log, subscription.WithClock(fixedClock))
	reportSvc := report.NewService(storage, cat, report.DefaultPlan, log)

	out := &bytes.Buffer{}
	return cli.New(in, out, authSvc, ledger, reportSvc, log), out
}

func script(lines ...string) io.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func run(t *testing.T, lines ...string) string {
	t.Helper()
	shell, out := newShell(t, script(lines...))
	require.NoError(t, shell.Run(context.Background()))
	return out.String()
}

func TestShell_RegisterTwice(t *testing.T) {
	out := run(t,
		"1", "alice", "pw1",
		"1", "alice", "other",
		"6",
	)

	assert.Contains(t, out, "Options:")
	assert.Equal(t, 1, strings.Count(out, "User registered successfully!"))
	assert.Equal(t, 1, strings.Count(out, "User is already registered."))
}

func TestShell_RegisterEmptyUsername(t *testing.T) {
	out := run(t, "1", "", "pw", "6")

	assert.Contains(t, out, "field Username is a required field")
	assert.NotContains(t, out, "User registered successfully!")
}

func TestShell_LoginFailure(t *testing.T) {
	out := run(t,
		"1", "alice", "pw1",
		"2", "alice", "wrong",
		"2", "bob", "pw1",
		"6",
	)

	assert.Equal(t, 2, strings.Count(out, "Invalid username or password."))
	assert.NotContains(t, out, "Authenticated User Options:")
}

func TestShell_SessionFlow(t *testing.T) {
	out := run(t,
		"1", "alice", "pw1",
		"2", "alice", "pw1",
		"1", "Spotify", "Premium", "2024-06-01", "2024-06-15",
		"3",
		"4",
		"6",
		"6",
	)

	assert.Contains(t, out, "Login successful!")
	assert.Contains(t, out, "Authenticated User Options:")
	assert.Contains(t, out, "Available plans:")
	assert.Contains(t, out, "Premium: $9.99")
	assert.Contains(t, out, "Free: $0")
	assert.Contains(t, out, "Subscription added successfully!")
	assert.Contains(t, out, "Subscriptions:")
	assert.Contains(t, out, "2024-06-01")
	assert.Contains(t, out, "Alert: The following subscriptions are expiring today:")
	assert.Contains(t, out, "Logged out successfully.")
	assert.Equal(t, 3, strings.Count(out, "\nOptions:"))
}

func TestShell_AddRejectsOldStartBeforeAskingEnd(t *testing.T) {
	out := run(t,
		"1", "alice", "pw1",
		"2", "alice", "pw1",
		"1", "Netflix", "Basic", "2023-01-01",
		"3",
		"6",
		"6",
	)

	assert.Contains(t, out, "Invalid start date. Start date cannot be more than 9 months older than the present date.")
	assert.NotContains(t, out, "Enter subscription end date (YYYY-MM-DD): ")
	assert.NotContains(t, out, "Subscription added successfully!")
	assert.NotContains(t, out, "2023-01-01")
}

func TestShell_AddRejectsPastEnd(t *testing.T) {
	out := run(t,
		"1", "alice", "pw1",
		"2", "alice", "pw1",
		"1", "Spotify", "Free", "2024-06-01", "2024-06-14",
		"4",
		"6",
		"6",
	)

	assert.Contains(t, out, "Invalid end date. End date cannot be earlier than the present day.")
	assert.Contains(t, out, "No subscriptions are expiring today.")
	assert.NotContains(t, out, "Subscription added successfully!")
}

func TestShell_AddMalformedDate(t *testing.T) {
	out := run(t,
		"1", "alice", "pw1",
		"2", "alice", "pw1",
		"1", "Spotify", "Free", "01/06/2024",
		"6",
		"6",
	)

	assert.Contains(t, out, "Invalid date format. Use YYYY-MM-DD.")
}

func TestShell_UnknownServiceShowsNoPlans(t *testing.T) {
	out := run(t,
		"1", "alice", "pw1",
		"2", "alice", "pw1",
		"1", "Disney", "Gold", "2024-06-01", "2024-07-01",
		"6",
		"6",
	)

	assert.Contains(t, out, "Available plans:\nEnter plan name: ")
	assert.Contains(t, out, "Subscription added successfully!")
}

func TestShell_UpdateAndDelete(t *testing.T) {
	out := run(t,
		"1", "alice", "pw1",
		"2", "alice", "pw1",
		"1", "Hotstar", "VIP", "2024-06-01", "2024-07-01",
		"5", "1", "2020-01-01", "2020-02-01",
		"3",
		"2", "1",
		"3",
		"6",
		"6",
	)

	assert.Contains(t, out, "Subscription updated successfully!")
	assert.Contains(t, out, "2020-02-01")
	assert.Contains(t, out, "Subscription deleted successfully!")
}

func TestShell_InvalidInput(t *testing.T) {
	out := run(t,
		"9",
		"1", "alice", "pw1",
		"2", "alice", "pw1",
		"x",
		"2", "abc",
		"5", "1", "", "2024-07-01",
		"5", "1", "2024-13-01", "2024-07-01",
		"6",
		"6",
	)

	assert.Equal(t, 2, strings.Count(out, "Invalid choice. Please try again."))
	assert.Contains(t, out, "Invalid subscription ID.")
	assert.Contains(t, out, "field StartDate is a required field")
	assert.Contains(t, out, "Invalid date format. Use YYYY-MM-DD.")
	assert.NotContains(t, out, "Subscription deleted successfully!")
	assert.NotContains(t, out, "Subscription updated successfully!")
}

func TestShell_DisplayAllAndUsers(t *testing.T) {
	out := run(t,
		"1", "alice", "secret-a",
		"1", "bob", "secret-b",
		"2", "bob", "secret-b",
		"1", "Netflix", "Standard", "2024-06-01", "2024-09-01",
		"6",
		"3",
		"4",
		"6",
	)

	assert.Contains(t, out, "All Subscriptions:")
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "Registered Users:")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
	assert.NotContains(t, out, "secret-a")
	assert.NotContains(t, out, "secret-b")
}

func TestShell_RevenueReport(t *testing.T) {
	out := run(t,
		"1", "alice", "pw1",
		"2", "alice", "pw1",
		"1", "Spotify", "Free", "2024-06-01", "2024-10-01",
		"1", "Spotify", "Family", "2024-06-01", "2024-10-01",
		"6",
		"5",
		"6",
	)

	assert.Contains(t, out, "Revenue Report:")
	assert.Contains(t, out, "Service: Spotify, Total Subscriptions: 2, Total Months: 8, Total Revenue: $159.84")
}

func TestShell_RevenueReportUnknownServiceKeepsRunning(t *testing.T) {
	out := run(t,
		"1", "alice", "pw1",
		"2", "alice", "pw1",
		"1", "Disney", "Gold", "2024-06-01", "2024-07-01",
		"6",
		"5",
		"9",
		"6",
	)

	assert.Contains(t, out, "Error: ")
	assert.NotContains(t, out, "Revenue Report:")
	assert.Contains(t, out, "Invalid choice. Please try again.")
}

func TestShell_EOFExitsCleanly(t *testing.T) {
	shell, out := newShell(t, strings.NewReader("1\nalice\n"))

	require.NoError(t, shell.Run(context.Background()))
	assert.Contains(t, out.String(), "Enter password: ")
}

func TestShell_CancelStopsWaiting(t *testing.T) {
	r, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })
	shell, _ := newShell(t, r)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- shell.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not stop after context cancellation")
	}
}

type recorderStub struct{ actions []string }

func (r *recorderStub) Observe(action string) { r.actions = append(r.actions, action) }

func TestShell_RecordsActions(t *testing.T) {
	rec := &recorderStub{}
	in := script(
		"1", "alice", "pw1",
		"2", "alice", "pw1",
		"3",
		"7",
		"6",
		"5",
		"6",
	)
	storage, err := repository.New(context.Background(), filepath.Join(t.TempDir(), "rec.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	require.NoError(t, migrations.Run(storage.DB))

	log := newNoopLogger()
	cat := catalog.Default()
	shell := cli.New(in, io.Discard,
		auth.NewService(storage, password.Plain{}, log),
		subscription.NewService(storage, cat, log, subscription.WithClock(fixedClock)),
		report.NewService(storage, cat, "", log),
		log,
		cli.WithRecorder(rec),
	)
	require.NoError(t, shell.Run(context.Background()))

	assert.Equal(t, []string{"register", "login", "list_own", "revenue_report"}, rec.actions)
}
