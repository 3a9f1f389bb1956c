// AngelaMos | 2026
// service_test.go

package download

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/entitlement"
)

// claimLedger mimics the conditional-update claim: under one mutex it
// consumes the newest live row, so at most one caller wins per row.
type claimLedger struct {
	mu   sync.Mutex
	rows []*entitlement.Entitlement
}

func (l *claimLedger) InsertIfAbsent(
	_ context.Context,
	_ core.DBTX,
	e *entitlement.Entitlement,
) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	row := *e
	l.rows = append(l.rows, &row)
	return true, nil
}

func (l *claimLedger) Claim(
	_ context.Context,
	userID, file string,
) (*entitlement.Entitlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for _, row := range l.rows {
		if row.UserID == userID && row.File == file &&
			!row.Downloaded && now.Before(row.ExpiresAt) {
			row.Downloaded = true
			at := now
			row.DownloadedAt = &at
			claimed := *row
			return &claimed, nil
		}
	}
	return nil, core.ErrNotFound
}

func (l *claimLedger) GetNewestByUserAndFile(
	_ context.Context,
	userID, file string,
) (*entitlement.Entitlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var newest *entitlement.Entitlement
	for _, row := range l.rows {
		if row.UserID != userID || row.File != file {
			continue
		}
		if newest == nil || row.CreatedAt.After(newest.CreatedAt) {
			newest = row
		}
	}
	if newest == nil {
		return nil, core.ErrNotFound
	}
	found := *newest
	return &found, nil
}

func (l *claimLedger) ListByUser(
	_ context.Context,
	_ string,
) ([]entitlement.Entitlement, error) {
	return nil, nil
}

func (l *claimLedger) List(
	_ context.Context,
	_, _ int,
) ([]entitlement.Entitlement, error) {
	return nil, nil
}

func (l *claimLedger) Count(_ context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows), nil
}

func (l *claimLedger) Stats(_ context.Context) (*entitlement.SalesStats, error) {
	return &entitlement.SalesStats{}, nil
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

type memStore struct {
	files map[string][]byte
}

func (s *memStore) Open(name string) (io.ReadSeekCloser, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, core.ErrNotFound
	}
	return memFile{bytes.NewReader(data)}, nil
}

func liveRow(userID, file string) *entitlement.Entitlement {
	return &entitlement.Entitlement{
		ID:             "e1",
		UserID:         userID,
		File:           file,
		ConfirmationID: "cs_1",
		CreatedAt:      time.Now(),
		ExpiresAt:      time.Now().Add(time.Hour),
	}
}

func TestGrantConsumesEntitlement(t *testing.T) {
	ledger := &claimLedger{rows: []*entitlement.Entitlement{liveRow("u1", "pack.zip")}}
	files := &memStore{files: map[string][]byte{"pack.zip": []byte("payload")}}
	svc := NewService(ledger, files)

	content, err := svc.Grant(context.Background(), "u1", "pack.zip")
	require.NoError(t, err)
	defer content.Close()

	data, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.True(t, ledger.rows[0].Downloaded)
	require.NotNil(t, ledger.rows[0].DownloadedAt)
}

func TestGrantNotEntitled(t *testing.T) {
	ledger := &claimLedger{}
	svc := NewService(ledger, &memStore{})

	_, err := svc.Grant(context.Background(), "u1", "pack.zip")

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_ENTITLED", appErr.Code)
}

func TestGrantSecondAttemptAlreadyDownloaded(t *testing.T) {
	ledger := &claimLedger{rows: []*entitlement.Entitlement{liveRow("u1", "pack.zip")}}
	files := &memStore{files: map[string][]byte{"pack.zip": []byte("payload")}}
	svc := NewService(ledger, files)

	first, err := svc.Grant(context.Background(), "u1", "pack.zip")
	require.NoError(t, err)
	first.Close()

	_, err = svc.Grant(context.Background(), "u1", "pack.zip")

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ALREADY_DOWNLOADED", appErr.Code)
}

func TestGrantExpiredWinsOverDownloadedFlag(t *testing.T) {
	row := liveRow("u1", "pack.zip")
	row.ExpiresAt = time.Now().Add(-time.Minute)
	row.Downloaded = true
	ledger := &claimLedger{rows: []*entitlement.Entitlement{row}}
	svc := NewService(ledger, &memStore{})

	_, err := svc.Grant(context.Background(), "u1", "pack.zip")

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ENTITLEMENT_EXPIRED", appErr.Code)
}

func TestGrantExpiredUnconsumed(t *testing.T) {
	row := liveRow("u1", "pack.zip")
	row.ExpiresAt = time.Now().Add(-time.Minute)
	ledger := &claimLedger{rows: []*entitlement.Entitlement{row}}
	svc := NewService(ledger, &memStore{})

	_, err := svc.Grant(context.Background(), "u1", "pack.zip")

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ENTITLEMENT_EXPIRED", appErr.Code)
	assert.False(t, ledger.rows[0].Downloaded, "refusal never mutates the row")
}

func TestGrantWrongUser(t *testing.T) {
	ledger := &claimLedger{rows: []*entitlement.Entitlement{liveRow("u1", "pack.zip")}}
	svc := NewService(ledger, &memStore{})

	_, err := svc.Grant(context.Background(), "u2", "pack.zip")

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_ENTITLED", appErr.Code)
}

func TestGrantConcurrentSingleWinner(t *testing.T) {
	ledger := &claimLedger{rows: []*entitlement.Entitlement{liveRow("u1", "pack.zip")}}
	files := &memStore{files: map[string][]byte{"pack.zip": []byte("payload")}}
	svc := NewService(ledger, files)

	const attempts = 16
	var wins, refusals int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			content, err := svc.Grant(context.Background(), "u1", "pack.zip")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				content.Close()
				wins++
				return
			}
			refusals++
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
	assert.Equal(t, int64(attempts-1), refusals)
}

func TestDirStoreFlattensNames(t *testing.T) {
	store := NewDirStore(t.TempDir())

	_, err := store.Open("../../etc/passwd")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = store.Open("..")
	assert.Error(t, err)
}

func TestStatusAtDerivation(t *testing.T) {
	now := time.Now()

	fresh := &entitlement.Entitlement{ExpiresAt: now.Add(time.Hour)}
	assert.Equal(t, entitlement.StatusReady, fresh.StatusAt(now))

	downloaded := &entitlement.Entitlement{ExpiresAt: now.Add(time.Hour), Downloaded: true}
	assert.Equal(t, entitlement.StatusDownloaded, downloaded.StatusAt(now))

	expired := &entitlement.Entitlement{ExpiresAt: now.Add(-time.Minute), Downloaded: true}
	assert.Equal(t, entitlement.StatusExpired, expired.StatusAt(now))

	boundary := &entitlement.Entitlement{ExpiresAt: now}
	assert.Equal(t, entitlement.StatusExpired, boundary.StatusAt(now))
}
