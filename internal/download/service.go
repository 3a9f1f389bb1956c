// AngelaMos | 2026
// service.go

package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/promptforge/storefront/internal/core"
	"github.com/promptforge/storefront/internal/entitlement"
)

// Service gates file delivery behind the entitlement ledger. Granting is
// a single conditional update in the ledger, never a read-then-write, so
// two racing requests for one entitlement cannot both win.
type Service struct {
	ledger entitlement.Repository
	files  FileStore
}

func NewService(ledger entitlement.Repository, files FileStore) *Service {
	return &Service{ledger: ledger, files: files}
}

// Grant claims an entitlement for the file and opens the content. When
// the claim finds nothing consumable it re-reads the newest row only to
// pick the right refusal; the refusal path never mutates anything.
func (s *Service) Grant(
	ctx context.Context,
	userID, filename string,
) (io.ReadSeekCloser, error) {
	claimed, err := s.ledger.Claim(ctx, userID, filename)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, s.refusal(ctx, userID, filename)
		}
		return nil, fmt.Errorf("grant download: %w", err)
	}

	content, err := s.files.Open(claimed.File)
	if err != nil {
		return nil, fmt.Errorf("grant download: %w", err)
	}

	return content, nil
}

func (s *Service) refusal(ctx context.Context, userID, filename string) error {
	newest, err := s.ledger.GetNewestByUserAndFile(ctx, userID, filename)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotEntitledError()
		}
		return fmt.Errorf("classify refusal: %w", err)
	}

	switch newest.StatusAt(time.Now()) {
	case entitlement.StatusExpired:
		return core.EntitlementExpiredError()
	case entitlement.StatusDownloaded:
		return core.AlreadyDownloadedError()
	default:
		return core.NotEntitledError()
	}
}
