package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"ehuza/internal/core"
	"ehuza/internal/wallet"
)

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
}

type profileDTO struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ImageURL  string `json:"imageUrl"`
	CreatedAt string `json:"createdAt"`
}

func (d profileDTO) toProfile() core.Profile {
	createdAt, err := time.Parse(time.RFC3339, d.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}
	return core.Profile{
		UserID:    d.UserID,
		Name:      d.Name,
		Email:     d.Email,
		ImageURL:  d.ImageURL,
		CreatedAt: createdAt,
	}
}

func (c *Client) Register(ctx context.Context, in wallet.RegisterInput) (wallet.AuthResult, error) {
	body := map[string]string{"name": in.Name, "email": in.Email, "password": in.Password}
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/user/register", nil, body, &resp); err != nil {
		return wallet.AuthResult{}, err
	}
	return wallet.AuthResult{Success: resp.Success, Message: resp.Message, Token: resp.Token, UserID: resp.UserID}, nil
}

func (c *Client) Login(ctx context.Context, in wallet.LoginInput) (wallet.AuthResult, error) {
	body := map[string]string{"email": in.Email, "password": in.Password}
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/user/login", nil, body, &resp); err != nil {
		return wallet.AuthResult{}, err
	}
	return wallet.AuthResult{Success: resp.Success, Message: resp.Message, Token: resp.Token, UserID: resp.UserID}, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/user/request-reset-password", nil, map[string]string{"email": email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	path := "/user/reset-password/" + url.PathEscape(token)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, map[string]string{"newPassword": newPassword}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) Profile(ctx context.Context) (core.Profile, error) {
	var resp struct {
		ProfileInfo profileDTO `json:"profileInfo"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/user/profile", nil, nil, &resp); err != nil {
		return core.Profile{}, err
	}
	return resp.ProfileInfo.toProfile(), nil
}

// UpdateProfile submits the edit form. Optional fields travel only when
// present: a JSON body normally, multipart when an image was attached.
func (c *Client) UpdateProfile(ctx context.Context, p wallet.UpdateProfilePayload) (core.Profile, error) {
	var resp struct {
		UpdatedProfile profileDTO `json:"updatedProfile"`
	}

	if p.HasImage() {
		req, err := c.multipartUpdateRequest(ctx, p)
		if err != nil {
			return core.Profile{}, err
		}
		if err := c.send(req, &resp); err != nil {
			return core.Profile{}, err
		}
		return resp.UpdatedProfile.toProfile(), nil
	}

	body := map[string]string{"name": p.Name, "email": p.Email}
	if p.HasPassword() {
		body["password"] = *p.Password
	}
	if err := c.doJSON(ctx, http.MethodPut, "/user/update", nil, body, &resp); err != nil {
		return core.Profile{}, err
	}
	return resp.UpdatedProfile.toProfile(), nil
}

func (c *Client) multipartUpdateRequest(ctx context.Context, p wallet.UpdateProfilePayload) (*http.Request, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("name", p.Name); err != nil {
		return nil, fmt.Errorf("write name field: %w", err)
	}
	if err := mw.WriteField("email", p.Email); err != nil {
		return nil, fmt.Errorf("write email field: %w", err)
	}
	if p.HasPassword() {
		if err := mw.WriteField("password", *p.Password); err != nil {
			return nil, fmt.Errorf("write password field: %w", err)
		}
	}

	fw, err := mw.CreateFormFile("image", p.Image.Filename)
	if err != nil {
		return nil, fmt.Errorf("create image part: %w", err)
	}
	if _, err := fw.Write(p.Image.Data); err != nil {
		return nil, fmt.Errorf("write image part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/user/update", &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req, nil
}
