package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/ergowatch/internal/pkg/logger"
	"github.com/gabapcia/ergowatch/internal/pkg/validator"
)

// ErrInvalidAddress is returned by AddAddress when the address fails the
// minimal format sanity check. This is a coarse length check, not a full
// checksum validation.
var ErrInvalidAddress = errors.New("invalid address format")

// minAddressLength is the shortest plausible mainnet address. Anything
// shorter is rejected outright.
const minAddressLength = 40

// nicknameLength is how many leading characters of the address are used as
// the default nickname.
const nicknameLength = 8

// AddressWatch holds the monitoring state for one watched address. Entries
// are created by AddAddress and mutated only by the monitor loop after a
// successful processing pass; they are never removed during a run.
type AddressWatch struct {
	Address       string    // opaque address identifier, immutable
	Nickname      string    // display label, defaults to a prefix of the address
	LastCheck     time.Time // transactions at or before this instant are considered seen
	LastHeight    int64     // highest confirmed block height observed
	Balance       Balance   // latest snapshot, replaced wholesale on refresh
	ReportBalance bool      // whether the address appears in the daily report
}

// watchRequest carries the AddAddress input through struct validation.
type watchRequest struct {
	Address string `validate:"required,min=40"`
}

// AddAddress registers an address for monitoring, or resets its state if it
// is already watched.
//
// The initial watermark (LastCheck) is set to now minus hoursLookback,
// truncated down to the top of the hour, so the first check picks up recent
// history without re-notifying the distant past. The nickname defaults to
// the first characters of the address when empty.
//
// Returns ErrInvalidAddress if the address is shorter than 40 characters.
func (s *service) AddAddress(ctx context.Context, address, nickname string, hoursLookback int, reportBalance bool) error {
	if err := validator.Validate(watchRequest{Address: address}); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	if nickname == "" {
		nickname = address[:nicknameLength]
	}

	lookback := time.Duration(hoursLookback) * time.Hour
	lastCheck := s.clock.Now().Add(-lookback).Truncate(time.Hour)

	s.mu.Lock()
	s.watched[address] = &AddressWatch{
		Address:       address,
		Nickname:      nickname,
		LastCheck:     lastCheck,
		LastHeight:    0,
		ReportBalance: reportBalance,
	}
	s.mu.Unlock()

	logger.Info(ctx, "address added to monitoring list",
		"address.nickname", nickname,
		"lookback.hours", hoursLookback,
		"lookback.from", lastCheck,
	)

	return nil
}

// Addresses returns a copy of every watched address entry. The order of
// entries is not guaranteed.
func (s *service) Addresses() []AddressWatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	watches := make([]AddressWatch, 0, len(s.watched))
	for _, watch := range s.watched {
		watches = append(watches, *watch)
	}
	return watches
}

// watchedAddresses snapshots the watched address keys at tick start, so
// additions during a tick are not visited until the next one.
func (s *service) watchedAddresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	addresses := make([]string, 0, len(s.watched))
	for address := range s.watched {
		addresses = append(addresses, address)
	}
	return addresses
}
