// Package apiclient is a typed client for the users/posts HTTP API.
//
// Every call makes exactly one request. Any failure (transport, non-2xx
// status, undecodable body) comes back as *Error carrying a fixed message for
// the operation; the underlying cause is logged, not returned.
package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"userposts/internal/models"
)

const DefaultBaseURL = "http://localhost:3030"

// Operation names one API call and the message reported when it fails.
type Operation struct {
	Name    string
	Message string
}

var (
	OpGetUsers   = Operation{"getUsers", "Failed to fetch users"}
	OpCreateUser = Operation{"createUser", "Failed to create user"}
	OpUpdateUser = Operation{"updateUser", "Failed to update user"}
	OpDeleteUser = Operation{"deleteUser", "Failed to delete user"}
	OpGetPosts   = Operation{"getPosts", "Failed to fetch posts"}
	OpCreatePost = Operation{"createPost", "Failed to create post"}
	OpUpdatePost = Operation{"updatePost", "Failed to update post"}
	OpDeletePost = Operation{"deletePost", "Failed to delete post"}
)

// Error is the normalized failure of an API call.
type Error struct {
	Op         string
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).SetBaseURL(c.http.BaseURL)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		http:   resty.New().SetBaseURL(baseURL),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return c
}

func (c *Client) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, OpGetUsers, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, in models.NewUser) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, OpCreateUser, http.MethodPost, "/users", in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, OpUpdateUser, http.MethodPut, fmt.Sprintf("/users/%d", id), patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, OpDeleteUser, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

func (c *Client) GetPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.do(ctx, OpGetPosts, http.MethodGet, "/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, in models.NewPost) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, OpCreatePost, http.MethodPost, "/posts", in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) UpdatePost(ctx context.Context, id int64, patch models.PostPatch) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, OpUpdatePost, http.MethodPut, fmt.Sprintf("/posts/%d", id), patch, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, OpDeletePost, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, op Operation, method, path string, body, out any) error {
	start := time.Now()

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return c.fail(ctx, op, 0, err, start)
	}

	if !resp.IsSuccess() {
		return c.fail(ctx, op, resp.StatusCode(), fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()), start)
	}

	if out != nil {
		if err := sonic.Unmarshal(resp.Body(), out); err != nil {
			return c.fail(ctx, op, resp.StatusCode(), fmt.Errorf("decode response: %w", err), start)
		}
	}

	return nil
}

func (c *Client) fail(ctx context.Context, op Operation, status int, cause error, start time.Time) error {
	c.logger.LogAttrs(ctx, slog.LevelError, "api request failed",
		slog.String("op", op.Name),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
		slog.String("error", cause.Error()),
	)
	return &Error{Op: op.Name, Message: op.Message, StatusCode: status}
}
