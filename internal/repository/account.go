package repository

import (
	"context"
	"errors"

	"github.com/dpperalta/crmclient/internal/entity"
)

// ErrSessionExpired means the API resolved no current user for the token: the
// session is gone and the caller should send the user back to login.
var ErrSessionExpired = errors.New("session expired")

const signupMutation = `
    mutation createUser($input: UserInput) {
        createUser(input: $input) {
            id
            firstName
            lastName
            email
        }
    }
`

const loginMutation = `
    mutation authenticate($input: AuthInput) {
        authenticate(input: $input) {
            token
        }
    }
`

const currentUserQuery = `
    query currentUser {
        currentUser {
            id
            firstName
            lastName
            email
        }
    }
`

// Account handles seller signup, login and session lookup against the remote
// API. It carries no local state; the token is the session.
type Account struct {
	gql Doer
}

// NewAccount creates an account repository.
func NewAccount(gql Doer) *Account {
	return &Account{gql: gql}
}

// Signup registers a new seller.
func (r *Account) Signup(ctx context.Context, input entity.SignupInput) (*entity.Seller, error) {
	var out struct {
		Seller entity.Seller `json:"createUser"`
	}
	if err := r.gql.Do(ctx, "", signupMutation, map[string]any{"input": input}, &out); err != nil {
		logger.Error().Err(err).Msg("Error creating account")
		return nil, err
	}
	return &out.Seller, nil
}

// Login exchanges credentials for a bearer token.
func (r *Account) Login(ctx context.Context, input entity.LoginInput) (string, error) {
	var out struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"authenticate"`
	}
	if err := r.gql.Do(ctx, "", loginMutation, map[string]any{"input": input}, &out); err != nil {
		logger.Error().Err(err).Msg("Error logging in")
		return "", err
	}
	return out.Auth.Token, nil
}

// Current resolves the seller behind a token. An error here means the session
// is gone and the caller should send the user back to login.
func (r *Account) Current(ctx context.Context, token string) (*entity.Seller, error) {
	var out struct {
		Seller entity.Seller `json:"currentUser"`
	}
	if err := r.gql.Do(ctx, token, currentUserQuery, nil, &out); err != nil {
		logger.Error().Err(err).Msg("Error resolving current user")
		return nil, err
	}
	// a null currentUser decodes cleanly into a zero seller; that is a dead
	// session, not a user
	if out.Seller.ID == "" {
		return nil, ErrSessionExpired
	}
	return &out.Seller, nil
}
