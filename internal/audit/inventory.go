package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/locktivity/epack-collector-iam-audit/internal/aws"
	"github.com/locktivity/epack-collector-iam-audit/internal/credreport"
	"github.com/rs/zerolog"
)

// Gateway is the part of the identity service the inventory reads from.
type Gateway interface {
	ListUsers(ctx context.Context) ([]aws.User, error)
	GetLoginProfile(ctx context.Context, userName string) (*aws.LoginProfile, error)
	ListAccessKeys(ctx context.Context, userName string) ([]aws.AccessKey, error)
	GetAccessKeyLastUsed(ctx context.Context, accessKeyID string) (*aws.AccessKeyLastUsed, error)
}

// Inventory gathers credential state from the identity service. Every lookup
// error other than a missing login profile is returned unchanged so a run
// never reports on partial data.
type Inventory struct {
	gateway Gateway
	logger  zerolog.Logger
}

// NewInventory creates an Inventory over gateway.
func NewInventory(gateway Gateway, logger zerolog.Logger) *Inventory {
	return &Inventory{gateway: gateway, logger: logger}
}

// Users lists the accounts to audit.
func (i *Inventory) Users(ctx context.Context) ([]aws.User, error) {
	users, err := i.gateway.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return users, nil
}

// LivePasswords looks up the login profile of each user. Users without a
// profile have no password and are returned disabled.
func (i *Inventory) LivePasswords(ctx context.Context, users []aws.User) ([]PasswordState, error) {
	states := make([]PasswordState, 0, len(users))
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		state := PasswordState{Account: u.UserName}

		profile, err := i.gateway.GetLoginProfile(ctx, u.UserName)
		switch {
		case errors.Is(err, aws.ErrNotFound):
			i.logger.Debug().Str("user", u.UserName).Msg("no login profile")
		case err != nil:
			return nil, err
		default:
			state.Enabled = true
			state.ResetRequired = profile.PasswordResetRequired
			state.LastUsed = u.PasswordLastUsed
			if !profile.CreateDate.IsZero() {
				changed := profile.CreateDate
				state.LastChanged = &changed
			}
		}

		states = append(states, state)
	}
	return states, nil
}

// ReportPasswords reads password state from credential report rows. The root
// account row is not an IAM user and is skipped.
func ReportPasswords(rows []credreport.Row) ([]PasswordState, error) {
	states := make([]PasswordState, 0, len(rows))
	for _, row := range rows {
		if row.IsRootAccount() {
			continue
		}

		state := PasswordState{
			Account: row.User(),
			Enabled: row.Bool(credreport.ColPasswordEnabled),
		}
		if state.Enabled {
			lastUsed, err := row.Time(credreport.ColPasswordLastUsed)
			if err != nil {
				return nil, err
			}
			lastChanged, err := row.Time(credreport.ColPasswordLastChanged)
			if err != nil {
				return nil, err
			}
			state.LastUsed = lastUsed
			state.LastChanged = lastChanged
		}

		states = append(states, state)
	}
	return states, nil
}

// Keys lists the access keys of each user. Last-use lookups are only made
// when ages are measured from last use.
func (i *Inventory) Keys(ctx context.Context, users []aws.User, source AgeSource) ([]AccessKey, error) {
	var keys []AccessKey
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		metas, err := i.gateway.ListAccessKeys(ctx, u.UserName)
		if err != nil {
			return nil, err
		}

		for _, m := range metas {
			key := AccessKey{
				Account:   u.UserName,
				KeyID:     m.AccessKeyID,
				Status:    m.Status,
				Active:    m.IsActive(),
				CreatedAt: m.CreateDate,
			}

			if source == AgeSourceLastUsed {
				lastUsed, err := i.gateway.GetAccessKeyLastUsed(ctx, m.AccessKeyID)
				if err != nil {
					return nil, err
				}
				key.LastUsed = lastUsed.LastUsedDate
				key.LastUsedService = lastUsed.ServiceName
				key.LastUsedRegion = lastUsed.Region
			}

			keys = append(keys, key)
		}
	}
	return keys, nil
}
