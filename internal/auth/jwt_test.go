package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestValidateToken(t *testing.T) {
	cfg := &JWTConfig{Secret: []byte("secret"), Issuer: "roomchat", Audience: "roomchat", TTL: time.Minute}

	valid, err := GenerateToken(cfg, 7, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	expired, err := GenerateToken(&JWTConfig{Secret: cfg.Secret, Issuer: cfg.Issuer, Audience: cfg.Audience, TTL: -time.Minute}, 7, "alice")
	if err != nil {
		t.Fatalf("generate expired: %v", err)
	}
	otherKey, err := GenerateToken(&JWTConfig{Secret: []byte("other"), Issuer: cfg.Issuer, Audience: cfg.Audience, TTL: time.Minute}, 7, "alice")
	if err != nil {
		t.Fatalf("generate other key: %v", err)
	}
	otherIssuer, err := GenerateToken(&JWTConfig{Secret: cfg.Secret, Issuer: "someone-else", Audience: cfg.Audience, TTL: time.Minute}, 7, "alice")
	if err != nil {
		t.Fatalf("generate other issuer: %v", err)
	}
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": "alice",
		"iss":      cfg.Issuer,
		"aud":      cfg.Audience,
	}).SignedString(cfg.Secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid", token: valid},
		{name: "expired", token: expired, wantErr: true},
		{name: "wrong key", token: otherKey, wantErr: true},
		{name: "wrong issuer", token: otherIssuer, wantErr: true},
		{name: "no expiry", token: noExpiry, wantErr: true},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(cfg, tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("expected ErrInvalidToken, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claims.Username != "alice" || claims.UserID != 7 {
				t.Fatalf("unexpected claims: %+v", claims)
			}
		})
	}
}
