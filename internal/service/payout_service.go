package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"quickpark/internal/db"
	"quickpark/internal/entities"
	apperrors "quickpark/internal/errors"
)

type PayoutService struct {
	Users     UserStore
	Provider  PaymentProvider
	ClientURL string
	locks     *keyedMutex
	log       *logrus.Logger
}

func NewPayoutService(users UserStore, provider PaymentProvider, clientURL string, log *logrus.Logger) *PayoutService {
	return &PayoutService{
		Users:     users,
		Provider:  provider,
		ClientURL: strings.TrimRight(clientURL, "/"),
		locks:     newKeyedMutex(),
		log:       log,
	}
}

// EnsurePayoutAccount returns the owner's payout account, creating it on first
// use. Concurrent calls for one owner always observe the same account id.
func (s *PayoutService) EnsurePayoutAccount(ctx context.Context, ownerID int64) (*entities.PayoutAccountStatus, error) {
	unlock := s.locks.Lock(ownerID)
	defer unlock()

	owner, err := s.Users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	logger := s.log.WithField("user_id", owner.ID)

	if owner.StripeAccountID == "" {
		created, err := s.Provider.CreateAccount(ctx, owner.Email)
		if err != nil {
			return nil, err
		}
		stored, err := s.Users.SetStripeAccountIfAbsent(ctx, owner.ID, created)
		if err != nil {
			logger.WithError(err).WithField("stripe_account_id", created).Error("payout account created but not stored")
			return nil, err
		}
		if stored != created {
			logger.WithFields(logrus.Fields{
				"stripe_account_id": stored,
				"orphan_account_id": created,
			}).Warn("payout account created concurrently, keeping the stored one")
		} else {
			logger.WithField("stripe_account_id", stored).Info("payout account created")
		}
		return &entities.PayoutAccountStatus{AccountID: stored, NeedsOnboarding: true}, nil
	}

	live, err := s.Provider.GetAccount(ctx, owner.StripeAccountID)
	if err != nil {
		logger.WithError(err).WithField("stripe_account_id", owner.StripeAccountID).Warn("could not read payout account status")
		return &entities.PayoutAccountStatus{AccountID: owner.StripeAccountID}, nil
	}
	status := &entities.PayoutAccountStatus{
		AccountID:        owner.StripeAccountID,
		DetailsSubmitted: live.DetailsSubmitted,
		ChargesEnabled:   live.ChargesEnabled,
		NeedsOnboarding:  !live.DetailsSubmitted || !live.ChargesEnabled,
	}
	if owner.OnboardingCompleted == status.NeedsOnboarding {
		s.persistOnboarding(ctx, owner.StripeAccountID, !status.NeedsOnboarding)
	}
	return status, nil
}

// AccountReady reports whether payments can be routed to the account. A cached
// completed flag is trusted; otherwise the provider is asked.
func (s *PayoutService) AccountReady(ctx context.Context, accountID string, cachedComplete bool) (bool, error) {
	if accountID == "" {
		return false, nil
	}
	if cachedComplete {
		return true, nil
	}
	live, err := s.Provider.GetAccount(ctx, accountID)
	if err != nil {
		return false, err
	}
	ready := live.DetailsSubmitted && live.ChargesEnabled
	if ready {
		s.persistOnboarding(ctx, accountID, true)
	}
	return ready, nil
}

// ResolveOnboardingLink returns a hosted onboarding URL for an account the owner holds.
func (s *PayoutService) ResolveOnboardingLink(ctx context.Context, accountID string, owner *db.User) (string, error) {
	if owner == nil || owner.StripeAccountID == "" || owner.StripeAccountID != accountID {
		return "", fmt.Errorf("%w: account %s does not belong to the caller", apperrors.ErrForbidden, accountID)
	}
	return s.Provider.CreateAccountLink(ctx, accountID, s.ClientURL+"/stripe-refresh", s.ClientURL+"/stripe-success")
}

// MarkOnboarding records the onboarding state reported by the provider.
func (s *PayoutService) MarkOnboarding(ctx context.Context, accountID string, complete bool) error {
	if accountID == "" {
		return fmt.Errorf("%w: missing account id", apperrors.ErrInvalidInput)
	}
	if err := s.Users.SetOnboardingCompleted(ctx, accountID, complete); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"stripe_account_id": accountID, "complete": complete}).Info("onboarding state updated")
	return nil
}

func (s *PayoutService) persistOnboarding(ctx context.Context, accountID string, complete bool) {
	if err := s.Users.SetOnboardingCompleted(ctx, accountID, complete); err != nil {
		s.log.WithError(err).WithField("stripe_account_id", accountID).Warn("could not cache onboarding state")
	}
}
