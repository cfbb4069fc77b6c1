package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nursultanov/user-dashboard/internal/domain"
)

// API is the HTTP transport of the resource surface. It exposes the same
// operations as the in-process usecase, so consumers can take either.
type API struct {
	baseURL string
	client  *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type wireUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type wireDraft struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type wireError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (u wireUser) toDomain() domain.User {
	return domain.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (a *API) ListUsers(ctx context.Context) ([]domain.User, error) {
	var wire []wireUser
	if err := a.do(ctx, http.MethodGet, "/users", nil, &wire); err != nil {
		return nil, err
	}
	users := make([]domain.User, len(wire))
	for i, w := range wire {
		users[i] = w.toDomain()
	}
	return users, nil
}

func (a *API) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var wire wireUser
	if err := a.do(ctx, http.MethodGet, "/users/"+id, nil, &wire); err != nil {
		return nil, err
	}
	u := wire.toDomain()
	return &u, nil
}

func (a *API) CreateUser(ctx context.Context, draft domain.UserDraft) (*domain.User, error) {
	var wire wireUser
	body := wireDraft{Name: draft.Name, Email: draft.Email}
	if err := a.do(ctx, http.MethodPost, "/users", body, &wire); err != nil {
		return nil, err
	}
	u := wire.toDomain()
	return &u, nil
}

func (a *API) UpdateUser(ctx context.Context, id string, draft domain.UserDraft) (*domain.User, error) {
	var wire wireUser
	body := wireDraft{Name: draft.Name, Email: draft.Email}
	if err := a.do(ctx, http.MethodPut, "/users/"+id, body, &wire); err != nil {
		return nil, err
	}
	u := wire.toDomain()
	return &u, nil
}

func (a *API) DeleteUser(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/users/"+id, nil, nil)
}

// do issues one request and decodes the response into out (if non-nil).
// Non-2xx answers are folded back into the domain error taxonomy.
func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body) // drain so the connection can be reused
	return nil
}

func decodeError(resp *http.Response) error {
	var wire wireError
	_ = json.NewDecoder(resp.Body).Decode(&wire)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return domain.ErrMissingField
	case http.StatusNotFound:
		return domain.ErrUserNotFound
	case http.StatusServiceUnavailable:
		return domain.ErrStoreUnavailable
	default:
		if wire.Error != "" {
			return fmt.Errorf("api: %s (status %d)", wire.Error, resp.StatusCode)
		}
		return fmt.Errorf("api: unexpected status %d", resp.StatusCode)
	}
}
