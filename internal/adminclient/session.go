package adminclient

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type SessionUser struct {
	ID    uint
	Email string
	Name  string
	Role  string
}

type Session struct {
	Token   string
	Expires time.Time
	User    SessionUser
}

type wireUser struct {
	ID    *uint   `json:"id"`
	Email *string `json:"email"`
	Name  *string `json:"name"`
	Role  *string `json:"role"`
}

type wireSession struct {
	Token   *string   `json:"token"`
	Expires *string   `json:"expires"`
	User    *wireUser `json:"user"`
}

func decodeUser(w *wireUser) (SessionUser, error) {
	c := checker{entity: "user"}
	if w == nil {
		c.fail("", "missing")
		return SessionUser{}, c.result()
	}
	u := SessionUser{
		ID:    c.id("id", w.ID),
		Email: c.text("email", w.Email),
		Name:  c.optText(w.Name),
		Role:  c.text("role", w.Role),
	}
	return u, c.result()
}

// Login exchanges credentials for a bearer token. Wrong credentials come
// back as ErrSignInRequired.
func (c *Client) Login(email, password string) (Session, error) {
	in := map[string]string{"email": email, "password": password}
	body, err := c.send(request{method: fiber.MethodPost, path: "/api/auth/login", body: in, public: true})
	if err != nil {
		return Session{}, err
	}

	var w wireSession
	if err := unmarshal("session", body, &w); err != nil {
		return Session{}, err
	}
	ch := checker{entity: "session"}
	s := Session{
		Token:   ch.text("token", w.Token),
		Expires: ch.time("expires", w.Expires),
	}
	if err := ch.result(); err != nil {
		return Session{}, err
	}
	if s.User, err = decodeUser(w.User); err != nil {
		return Session{}, err
	}
	return s, nil
}

// CurrentSession re-validates the stored token.
func (c *Client) CurrentSession() (SessionUser, error) {
	body, err := c.send(request{method: fiber.MethodGet, path: "/api/auth/session"})
	if err != nil {
		return SessionUser{}, err
	}
	var w struct {
		User *wireUser `json:"user"`
	}
	if err := unmarshal("session", body, &w); err != nil {
		return SessionUser{}, err
	}
	return decodeUser(w.User)
}
