package zoho

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/skdcommerce/storefront-api/internal/config"
)

// ErrRecordNotFound indica que a busca no CRM não encontrou o registro
var ErrRecordNotFound = errors.New("zoho record not found")

// Client fala com a API do Zoho CRM. O token de acesso é obtido a cada
// chamada via refresh token, sem cache: um token expirado aparece como uma
// falha retryável, nunca como um crash.
type Client struct {
	http *resty.Client
	cfg  config.Zoho
}

// NewClient cria uma nova instância de Client com timeout limitado nas
// chamadas externas
func NewClient(cfg config.Zoho) *Client {
	return &Client{
		http: resty.New().SetTimeout(10 * time.Second),
		cfg:  cfg,
	}
}

// Configured indica se as credenciais do CRM estão presentes
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	var result tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"refresh_token": c.cfg.RefreshToken,
			"client_id":     c.cfg.ClientID,
			"client_secret": c.cfg.ClientSecret,
			"grant_type":    "refresh_token",
		}).
		SetResult(&result).
		Post(c.cfg.AccountsURL + "/oauth/v2/token")
	if err != nil {
		return "", fmt.Errorf("zoho token request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("zoho token failed: %d %s", resp.StatusCode(), resp.String())
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("zoho token response without access_token")
	}
	return result.AccessToken, nil
}

type recordResponse struct {
	Data []struct {
		ID      string `json:"id"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
	} `json:"data"`
}

// CreateRecord cria um registro no módulo configurado e retorna o id
func (c *Client) CreateRecord(ctx context.Context, payload map[string]any) (string, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return "", err
	}

	var result recordResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Zoho-oauthtokens "+token).
		SetBody(map[string]any{"data": []map[string]any{payload}}).
		SetResult(&result).
		Post(fmt.Sprintf("%s/crm/v2/%s", c.cfg.APIBaseURL, c.cfg.Module))
	if err != nil {
		return "", fmt.Errorf("zoho create request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("zoho create failed: %d %s", resp.StatusCode(), resp.String())
	}
	if len(result.Data) == 0 || result.Data[0].Details.ID == "" {
		return "", fmt.Errorf("zoho create returned no id")
	}
	return result.Data[0].Details.ID, nil
}

// UpdateRecord atualiza um registro existente
func (c *Client) UpdateRecord(ctx context.Context, recordID string, payload map[string]any) error {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Zoho-oauthtokens "+token).
		SetBody(map[string]any{"data": []map[string]any{payload}}).
		Put(fmt.Sprintf("%s/crm/v2/%s/%s", c.cfg.APIBaseURL, c.cfg.Module, recordID))
	if err != nil {
		return fmt.Errorf("zoho update request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("zoho update failed: %d %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// SearchByOrderID busca um registro pelo identificador de negócio do pedido
func (c *Client) SearchByOrderID(ctx context.Context, orderID string) (string, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return "", err
	}

	var result recordResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Zoho-oauthtokens "+token).
		SetQueryParam("criteria", fmt.Sprintf("(Order_ID:equals:%s)", orderID)).
		SetResult(&result).
		Get(fmt.Sprintf("%s/crm/v2/%s/search", c.cfg.APIBaseURL, c.cfg.Module))
	if err != nil {
		return "", fmt.Errorf("zoho search request failed: %w", err)
	}
	// A busca devolve 204 sem corpo quando não há resultados.
	if !resp.IsSuccess() || len(result.Data) == 0 || result.Data[0].ID == "" {
		return "", ErrRecordNotFound
	}
	return result.Data[0].ID, nil
}
