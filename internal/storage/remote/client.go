package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	"roxat-report/internal/storage"
)

// Client talks to the order API. Requests carry no timeout of their own: large branches
// take long to answer, the caller's context decides when to give up.
type Client struct {
	baseURL string
	limit   int
	http    *http.Client
}

func New(baseURL string, limit int, httpClient *http.Client) (*Client, error) {
	const op = "storage.remote.New"

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: некорректный base_url: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base_url должен быть абсолютным: %q", op, baseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		http:    httpClient,
	}, nil
}

// GetBranchOrders fetches the branch's orders, at most one page of `limit` records.
// A 401 answer is reported as ErrUnauthorized, every other failure as *TransportError.
func (c *Client) GetBranchOrders(ctx context.Context, token, branch string) ([]storage.Order, error) {
	const op = "storage.remote.GetBranchOrders"

	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("page", "1")
	endpoint := c.baseURL + "/orders/branch/" + url.PathEscape(branch) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &TransportError{Op: op, Status: resp.StatusCode, Err: ErrUnauthorized}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	raw, err := storage.DecodeOrders(body)
	if err != nil {
		return nil, &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("ответ не является списком заказов: %w", err)}
	}

	return storage.NormalizeAll(raw), nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	User    json.RawMessage `json:"user"`
	Message string          `json:"message"`
}

// Login exchanges credentials for an order API token. A 4xx answer, or any failure that
// carries a message, returns *LoginError with that message (DefaultLoginMessage for a bare
// 4xx). Other failures are *TransportError.
func (c *Client) Login(ctx context.Context, email, password string) (string, json.RawMessage, error) {
	const op = "storage.remote.Login"

	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var body loginResponse
	// тело ошибки может быть не JSON, тогда сообщение берем по умолчанию
	decodeErr := render.DecodeJSON(resp.Body, &body)

	msg := strings.TrimSpace(body.Message)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		if msg == "" {
			msg = DefaultLoginMessage
		}
		return "", nil, &LoginError{Status: resp.StatusCode, Message: msg}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// сообщение сервера показываем пользователю при любом статусе
		if msg != "" {
			return "", nil, &LoginError{Status: resp.StatusCode, Message: msg}
		}
		return "", nil, &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}
	if decodeErr != nil {
		return "", nil, &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("не удалось разобрать ответ: %w", decodeErr)}
	}
	if body.Token == "" {
		return "", nil, &LoginError{Status: resp.StatusCode, Message: DefaultLoginMessage}
	}

	return body.Token, body.User, nil
}
