package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/thand-io/reader/internal/client"
	"github.com/thand-io/reader/internal/metrics"
	"github.com/thand-io/reader/internal/models"
)

const (
	PathLogin     = "/auth/login"
	PathRegister  = "/auth/register"
	PathLogout    = "/auth/logout"
	PathProfile   = "/auth/me"
	PathMagazines = "/magazines"
	PathDigests   = "/digests"
	PathArticles  = "/articles"
)

var ErrMissingToken = errors.New("server response did not include a token")

// ErrInvalidCredentials is returned when login or registration is
// answered with a 401.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Sender is the part of the HTTP client the service needs.
type Sender interface {
	Send(ctx context.Context, req *client.Request) (*client.Response, error)
}

// SessionWriter is the part of the session store the service mutates.
type SessionWriter interface {
	SetSession(ctx context.Context, token string, user *models.User) error
	SetUser(ctx context.Context, user *models.User) error
	Clear(ctx context.Context) error
}

// Service exposes the reader endpoints as typed calls.
type Service struct {
	sender Sender
	store  SessionWriter
}

func NewService(sender Sender, store SessionWriter) *Service {
	return &Service{
		sender: sender,
		store:  store,
	}
}

// Login authenticates and stores the resulting session.
func (s *Service) Login(ctx context.Context, credentials models.Credentials) (*models.AuthResponse, error) {
	return s.authenticate(ctx, PathLogin, credentials)
}

// Register creates an account and stores the resulting session.
func (s *Service) Register(ctx context.Context, registration models.Registration) (*models.AuthResponse, error) {
	return s.authenticate(ctx, PathRegister, registration)
}

func (s *Service) authenticate(ctx context.Context, path string, body any) (*models.AuthResponse, error) {
	var auth models.AuthResponse

	_, err := s.sender.Send(ctx, &client.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
		Result: &auth,
	})
	if errors.Is(err, client.ErrSessionExpired) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if len(auth.Token) == 0 {
		return nil, ErrMissingToken
	}

	if err := s.store.SetSession(ctx, auth.Token, auth.User); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"path": path,
		"user": auth.User.GetName(),
	}).Infoln("Authenticated with reader service")

	return &auth, nil
}

// Logout tells the server to drop the token, then clears the local
// session whatever the server said.
func (s *Service) Logout(ctx context.Context) error {
	_, err := s.sender.Send(ctx, &client.Request{
		Method: http.MethodPost,
		Path:   PathLogout,
	})
	var networkErr *client.NetworkError
	switch {
	case err == nil, errors.Is(err, client.ErrSessionExpired):
	case errors.As(err, &networkErr):
		// Already reported to the user by the client
		logrus.WithError(err).Debugln("Server logout unreachable, clearing local session anyway")
	default:
		logrus.WithError(err).Warnln("Server logout failed, clearing local session anyway")
	}

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	metrics.SessionClearsTotal.WithLabelValues(metrics.ClearReasonLogout).Inc()
	return nil
}

// Profile fetches the current user and refreshes the stored profile.
func (s *Service) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.get(ctx, PathProfile, nil, &user); err != nil {
		return nil, err
	}

	if err := s.store.SetUser(ctx, &user); err != nil {
		logrus.WithError(err).Warnln("Failed to store refreshed profile")
	}

	return &user, nil
}

func (s *Service) Magazines(ctx context.Context) ([]models.Magazine, error) {
	var page models.Page[models.Magazine]
	if err := s.get(ctx, PathMagazines, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) Digests(ctx context.Context) ([]models.Digest, error) {
	var page models.Page[models.Digest]
	if err := s.get(ctx, PathDigests, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) Articles(ctx context.Context, query models.ArticleQuery) ([]models.Article, error) {
	var page models.Page[models.Article]
	if err := s.get(ctx, PathArticles, articleValues(query), &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *Service) Article(ctx context.Context, id string) (*models.Article, error) {
	if len(id) == 0 {
		return nil, errors.New("article id is required")
	}

	var article models.Article
	if err := s.get(ctx, PathArticles+"/"+url.PathEscape(id), nil, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *Service) get(ctx context.Context, path string, query url.Values, result any) error {
	_, err := s.sender.Send(ctx, &client.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
		Result: result,
	})
	return err
}

func articleValues(query models.ArticleQuery) url.Values {
	values := url.Values{}
	if len(query.MagazineID) > 0 {
		values.Set("magazine_id", query.MagazineID)
	}
	if len(query.DigestID) > 0 {
		values.Set("digest_id", query.DigestID)
	}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	return values
}
