package marketapi

import (
	"context"
	"net/http"

	"github.com/farmconnect/marketplace-gateway/internal/core/domain"
	"github.com/farmconnect/marketplace-gateway/internal/core/ports"
)

type wireUser struct {
	ID       string `json:"id"`
	MongoID  string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

func (u wireUser) toDomain() domain.User {
	return domain.User{
		ID:       firstNonEmpty(u.ID, u.MongoID),
		Name:     u.Name,
		Email:    u.Email,
		Role:     domain.Role(u.Role),
		Location: u.Location,
		Phone:    u.Phone,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
}

type registerResponse struct {
	User *wireUser `json:"user"`
	wireUser
}

func (cl *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResult, error) {
	var resp loginResponse
	err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/login",
		endpoint: "/auth/login",
		body:     loginRequest{Email: creds.Email, Password: creds.Password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, domain.NewError(domain.KindServer, "market api login returned no token", nil)
	}
	return &ports.LoginResult{Token: resp.Token, User: resp.User.toDomain()}, nil
}

func (cl *Client) Register(ctx context.Context, reg ports.Registration) (*domain.User, error) {
	var resp registerResponse
	err := cl.do(ctx, call{
		method:   http.MethodPost,
		path:     "/auth/register",
		endpoint: "/auth/register",
		body: registerRequest{
			Name:     reg.Name,
			Email:    reg.Email,
			Password: reg.Password,
			Role:     string(reg.Role),
			Location: reg.Location,
			Phone:    reg.Phone,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	wu := resp.wireUser
	if resp.User != nil {
		wu = *resp.User
	}
	user := wu.toDomain()
	if user.Email == "" {
		user.Email = reg.Email
	}
	if user.Role == "" {
		user.Role = reg.Role
	}
	if user.Name == "" {
		user.Name = reg.Name
	}
	return &user, nil
}

func (cl *Client) Logout(ctx context.Context, token string) error {
	return cl.do(ctx, call{method: http.MethodPost, path: "/auth/logout", endpoint: "/auth/logout", token: token}, nil)
}

func (cl *Client) Verify(ctx context.Context, token string) error {
	return cl.do(ctx, call{method: http.MethodGet, path: "/auth/verify", endpoint: "/auth/verify", token: token}, nil)
}
