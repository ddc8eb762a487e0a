package svc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/schema"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

// StatusError is returned when the backend answers with a non 2xx status
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

type messagesQuery struct {
	CustomerID   string `schema:"customer_id,omitempty"`
	SeerID       string `schema:"seer_id,omitempty"`
	Page         int    `schema:"page,omitempty"`
	CreationDate string `schema:"creationDate,omitempty"`
}

type customersQuery struct {
	SeerID string `schema:"seer_id"`
}

type seerSendPayload struct {
	Body          string  `json:"body"`
	Receiver      chat.ID `json:"receiver"`
	InitialSender chat.ID `json:"initialSender"`
	Sender        chat.ID `json:"sender"`
}

type clientSendPayload struct {
	Body   string  `json:"body"`
	Sender chat.ID `json:"sender"`
}

type goalQuery struct {
	CustomerID string `schema:"customer_id"`
}

// noGoalError is what the goal endpoint answers for customers without one
const noGoalError = "No customer goal found"

type planList struct {
	Results []chat.Plan `json:"results"`
}

type participantList struct {
	Results []chat.Participant `json:"results"`
}

// BackendClient talks to the marketplace REST API on behalf of one identity
type BackendClient struct {
	BaseURL    *url.URL
	Token      string
	HTTPClient *http.Client

	encoder *schema.Encoder

	mu       sync.RWMutex
	identity chat.Identity
}

// NewBackendClient creates a BackendClient for the API at baseURL
func NewBackendClient(baseURL, token string, identity chat.Identity) (*BackendClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: missing scheme or host", baseURL)
	}
	return &BackendClient{
		BaseURL:    base,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		encoder:    schema.NewEncoder(),
		identity:   identity,
	}, nil
}

// Identity returns who requests are made for
func (c *BackendClient) Identity() chat.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// SetIdentity changes who requests are made for, e.g. when a seer switches profile
func (c *BackendClient) SetIdentity(identity chat.Identity) {
	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()
}

// LatestMessages loads the first page of a conversation
func (c *BackendClient) LatestMessages(ctx context.Context, participant chat.Participant) (*chat.Page, error) {
	return c.MessagesPage(ctx, participant, 1)
}

// MessagesPage loads a numbered page of a conversation, newest first
func (c *BackendClient) MessagesPage(ctx context.Context, participant chat.Participant, page int) (*chat.Page, error) {
	if page < 1 {
		page = 1
	}
	return c.messages(ctx, participant, messagesQuery{Page: page})
}

// MessagesBefore loads the messages older than creationDate
func (c *BackendClient) MessagesBefore(ctx context.Context, participant chat.Participant, creationDate string) (*chat.Page, error) {
	formatted := chat.FormatDateForAPI(creationDate)
	if formatted == "" {
		return nil, fmt.Errorf("invalid creation date %q", creationDate)
	}
	return c.messages(ctx, participant, messagesQuery{CreationDate: formatted})
}

// MessagesFromURL follows a next or previous cursor returned with a page
func (c *BackendClient) MessagesFromURL(ctx context.Context, rawURL string) (*chat.Page, error) {
	var page chat.Page
	if err := c.do(ctx, http.MethodGet, rawURL, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *BackendClient) messages(ctx context.Context, participant chat.Participant, query messagesQuery) (*chat.Page, error) {
	if participant.ID.IsZero() {
		return nil, fmt.Errorf("no participant selected")
	}
	identity := c.Identity()

	var path string
	if identity.Type == chat.Seer {
		path = "/api/chat/seer/messages"
		query.CustomerID = participant.ID.String()
		query.SeerID = identity.SeerUserID().String()
	} else {
		path = fmt.Sprintf("/api/chat/user/%s/messages", url.PathEscape(participant.ID.String()))
	}

	values := url.Values{}
	if err := c.encoder.Encode(query, values); err != nil {
		return nil, err
	}

	var page chat.Page
	if err := c.do(ctx, http.MethodGet, path+"?"+values.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SendMessage posts a message to participant
func (c *BackendClient) SendMessage(ctx context.Context, participant chat.Participant, body string) error {
	if participant.ID.IsZero() {
		return fmt.Errorf("no participant selected")
	}
	identity := c.Identity()

	if identity.Type == chat.Seer {
		initialSender := chat.ID("0")
		if identity.ActingSeer != nil && !identity.ActingSeer.ID.IsZero() {
			initialSender = identity.ActingSeer.ID
		}
		return c.do(ctx, http.MethodPost, "/api/chat/seer/send-message/", seerSendPayload{
			Body:          body,
			Receiver:      participant.ID,
			InitialSender: initialSender,
			Sender:        identity.SenderID(),
		}, nil)
	}

	path := fmt.Sprintf("/api/chat/user/%s/send-message/", url.PathEscape(participant.ID.String()))
	return c.do(ctx, http.MethodPost, path, clientSendPayload{Body: body, Sender: identity.UserID}, nil)
}

// Me returns the logged in account, including its credit balance
func (c *BackendClient) Me(ctx context.Context) (*chat.Account, error) {
	var account chat.Account
	if err := c.do(ctx, http.MethodGet, "/auth/users/me/", nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Counterparts lists who the current identity can chat with. Seers see the
// clients waiting for an answer, clients see the seers they talked to.
func (c *BackendClient) Counterparts(ctx context.Context) ([]chat.Participant, error) {
	identity := c.Identity()
	path := "/api/chat/seer/all-unanswered-users"
	if identity.Type != chat.Seer {
		values := url.Values{}
		if err := c.encoder.Encode(customersQuery{SeerID: identity.SeerUserID().String()}, values); err != nil {
			return nil, err
		}
		path = "/api/chat/seer/customers?" + values.Encode()
	}

	var list participantList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// Seers lists every seer profile of the marketplace
func (c *BackendClient) Seers(ctx context.Context) ([]chat.Participant, error) {
	var list participantList
	if err := c.do(ctx, http.MethodGet, "/api/seers/", nil, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// Plans lists the credit packages on sale
func (c *BackendClient) Plans(ctx context.Context) ([]chat.Plan, error) {
	var list planList
	if err := c.do(ctx, http.MethodGet, "/api/plans/list", nil, &list); err != nil {
		return nil, err
	}
	return list.Results, nil
}

// Goal returns what the seer noted about a customer, or nil when nothing was noted yet
func (c *BackendClient) Goal(ctx context.Context, customerID chat.ID) (*chat.Goal, error) {
	values := url.Values{}
	if err := c.encoder.Encode(goalQuery{CustomerID: customerID.String()}, values); err != nil {
		return nil, err
	}

	var goal chat.Goal
	err := c.do(ctx, http.MethodGet, "/api/chat/seer/goal/?"+values.Encode(), nil, &goal)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound && statusErr.Detail == noGoalError {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if goal.CustomerID.IsZero() {
		goal.CustomerID = customerID
	}
	return &goal, nil
}

// SaveGoal creates or updates the goal of a customer on behalf of the current seer
func (c *BackendClient) SaveGoal(ctx context.Context, goal chat.Goal) error {
	if goal.CustomerID.IsZero() {
		return fmt.Errorf("goal has no customer")
	}
	if goal.SeerAdminID.IsZero() {
		goal.SeerAdminID = c.Identity().UserID
	}
	return c.do(ctx, http.MethodPost, "/api/chat/seer/goal-create/", goal, nil)
}

func (c *BackendClient) resolve(ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}
	resolved := *c.BaseURL
	resolved.Path = strings.TrimRight(c.BaseURL.Path, "/") + "/" + strings.TrimLeft(parsed.Path, "/")
	resolved.RawQuery = parsed.RawQuery
	return resolved.String(), nil
}

func (c *BackendClient) do(ctx context.Context, method, ref string, payload interface{}, out interface{}) error {
	target, err := c.resolve(ref)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		payloadJSON, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payloadJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json;charset=UTF-8")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Token "+c.Token)
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: res.StatusCode,
			Detail:     errorDetail(resBody),
		}
	}
	if out == nil || len(bytes.TrimSpace(resBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, target, err)
	}
	return nil
}

// errorDetail extracts the "detail" or "error" field the API uses for error messages
func errorDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error
}
