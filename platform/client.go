package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hyunw00/attendbot/config"
	"github.com/hyunw00/attendbot/models"
	"github.com/hyunw00/attendbot/utils"
)

// Client talks to the messaging platform's bot API: profile lookups, message
// sends, persistent menu management and attachment downloads.
type Client struct {
	cfg    config.AppConfig
	tokens *TokenSource
	hc     *http.Client
	// separate client with redirects disabled for the attachment flow
	noRedirect *http.Client
}

// NewClient builds a platform client with sane outbound timeouts.
func NewClient(cfg config.AppConfig) *Client {
	return &Client{
		cfg:    cfg,
		tokens: NewTokenSource(cfg),
		hc:     &http.Client{Timeout: 15 * time.Second},
		noRedirect: &http.Client{
			Timeout: 15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// userProfile mirrors the platform's user endpoint payload; only the fields we
// read are declared.
type userProfile struct {
	Email          string `json:"email"`
	EmployeeNumber string `json:"employeeNumber"`
	UserName       struct {
		LastName  string `json:"lastName"`
		FirstName string `json:"firstName"`
	} `json:"userName"`
	Organizations []struct {
		Primary   bool   `json:"primary"`
		LevelName string `json:"levelName"`
		OrgUnits  []struct {
			Primary      bool   `json:"primary"`
			OrgUnitName  string `json:"orgUnitName"`
			PositionName string `json:"positionName"`
		} `json:"orgUnits"`
	} `json:"organizations"`
}

// GetUserInfo fetches a user's profile snapshot. Any failure degrades to
// placeholder values so attendance recording never blocks on the directory.
func (c *Client) GetUserInfo(ctx context.Context, userID string) models.UserInfo {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		utils.Sugar.Warnf("user info lookup skipped, token error: %v", err)
		return models.PlaceholderUserInfo(userID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.WorksAPIURL+"/users/"+userID, nil)
	if err != nil {
		return models.PlaceholderUserInfo(userID)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		utils.Sugar.Warnf("user info request failed for %s: %v", userID, err)
		return models.PlaceholderUserInfo(userID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		utils.Sugar.Warnf("user info lookup failed for %s: %d %s", userID, resp.StatusCode, string(body))
		return models.PlaceholderUserInfo(userID)
	}

	var p userProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		utils.Sugar.Warnf("user info decode failed for %s: %v", userID, err)
		return models.PlaceholderUserInfo(userID)
	}

	info := models.UserInfo{
		Name:           joinName(p.UserName.LastName, p.UserName.FirstName),
		Email:          orDefault(p.Email, "이메일없음"),
		Department:     "부서없음",
		Level:          "직급없음",
		Position:       "직책없음",
		EmployeeNumber: orDefault(p.EmployeeNumber, "사번없음"),
	}

	// primary organization wins, falling back to the first listed
	orgIdx := 0
	for i, org := range p.Organizations {
		if org.Primary {
			orgIdx = i
			break
		}
	}
	if orgIdx < len(p.Organizations) {
		org := p.Organizations[orgIdx]
		if org.LevelName != "" {
			info.Level = org.LevelName
		}
		unitIdx := 0
		for i, unit := range org.OrgUnits {
			if unit.Primary {
				unitIdx = i
				break
			}
		}
		if unitIdx < len(org.OrgUnits) {
			unit := org.OrgUnits[unitIdx]
			if unit.OrgUnitName != "" {
				info.Department = unit.OrgUnitName
			}
			if unit.PositionName != "" {
				info.Position = unit.PositionName
			}
		}
	}

	return info
}

// SendMessage posts a message payload to a user, or to a channel when
// channelID is non-empty.
func (c *Client) SendMessage(ctx context.Context, userID, channelID string, message any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bots/%s/users/%s/messages", c.cfg.WorksAPIURL, c.cfg.WorksBotID, userID)
	if channelID != "" {
		endpoint = fmt.Sprintf("%s/bots/%s/channels/%s/messages", c.cfg.WorksAPIURL, c.cfg.WorksBotID, channelID)
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("message send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("message send returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// SendText is a shortcut for plain text replies.
func (c *Client) SendText(ctx context.Context, userID, channelID, text string) error {
	return c.SendMessage(ctx, userID, channelID, TextMessage(text))
}

// CreatePersistentMenu registers the check-in and check-out buttons on the
// bot's persistent menu.
func (c *Client) CreatePersistentMenu(ctx context.Context) error {
	menu := map[string]any{
		"content": map[string]any{
			"actions": []map[string]any{
				{
					"type":  "location",
					"label": "출근하기",
					"i18nLabels": []map[string]string{
						{"language": "ko_KR", "label": "출근하기"},
					},
				},
				{
					"type":     "message",
					"label":    "퇴근하기",
					"postback": "CHECKOUT_ACTION",
					"i18nLabels": []map[string]string{
						{"language": "ko_KR", "label": "퇴근하기"},
					},
				},
			},
		},
	}
	return c.menuRequest(ctx, http.MethodPost, menu)
}

// DeletePersistentMenu removes the bot's persistent menu.
func (c *Client) DeletePersistentMenu(ctx context.Context) error {
	return c.menuRequest(ctx, http.MethodDelete, nil)
}

func (c *Client) menuRequest(ctx context.Context, method string, payload any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	endpoint := fmt.Sprintf("%s/bots/%s/persistentmenu", c.cfg.WorksAPIURL, c.cfg.WorksBotID)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("persistent menu request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("persistent menu returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// DownloadContent fetches an attachment binary. The bot API answers the first
// request with a 302 whose Location header points at the real file, so the
// flow is two-step with automatic redirects disabled.
func (c *Client) DownloadContent(ctx context.Context, fileID string) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/bots/%s/attachments/%s", c.cfg.WorksAPIURL, c.cfg.WorksBotID, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.noRedirect.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attachment redirect request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("attachment endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("attachment endpoint returned no Location header")
	}

	fileReq, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	fileResp, err := c.hc.Do(fileReq)
	if err != nil {
		return nil, fmt.Errorf("attachment download failed: %w", err)
	}
	defer fileResp.Body.Close()

	if fileResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(fileResp.Body)
		return nil, fmt.Errorf("attachment download returned %d: %s", fileResp.StatusCode, string(body))
	}

	return io.ReadAll(fileResp.Body)
}

func joinName(last, first string) string {
	name := last
	if first != "" {
		if name != "" {
			name += " "
		}
		name += first
	}
	if name == "" {
		return "이름없음"
	}
	return name
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
