package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims identify an authenticated guest on every request. The uid is
// passed explicitly into service operations as the acting identity.
type UserClaims struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// GuestLoginRequest is the request body for guest sign-in.
type GuestLoginRequest struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}

// GuestLoginResponse is returned after a successful guest sign-in.
type GuestLoginResponse struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}
