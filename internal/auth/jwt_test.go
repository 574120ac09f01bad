package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testKeyPair holds the paths to test keys
type testKeyPair struct {
	privateKeyPath string
	publicKeyPath  string
}

// generateTestKeys creates temporary RSA key files for testing
func generateTestKeys(t *testing.T) *testKeyPair {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}

	tmpDir := t.TempDir()

	privateKeyPath := filepath.Join(tmpDir, "private.pem")
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	if err := os.WriteFile(privateKeyPath, privatePEM, 0o600); err != nil {
		t.Fatalf("Failed to write private key: %v", err)
	}

	publicKeyPath := filepath.Join(tmpDir, "public.pem")
	publicBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		t.Fatalf("Failed to marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicBytes,
	})
	if err := os.WriteFile(publicKeyPath, publicPEM, 0o644); err != nil {
		t.Fatalf("Failed to write public key: %v", err)
	}

	return &testKeyPair{privateKeyPath: privateKeyPath, publicKeyPath: publicKeyPath}
}

func newTestService(t *testing.T, expiry time.Duration) JWTService {
	t.Helper()
	keys := generateTestKeys(t)
	svc, err := NewJWTService(JWTConfig{
		PrivateKeyPath:    keys.privateKeyPath,
		PublicKeyPath:     keys.publicKeyPath,
		AccessTokenExpiry: expiry,
		Issuer:            "pulsecheck-test",
	})
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	return svc
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestService(t, 15*time.Minute)

	tokenString, expiresAt, err := svc.GenerateAccessToken("user-1", "org-1", RoleAnalyst)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if tokenString == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expiresAt = %v, want in the future", expiresAt)
	}

	claims, err := svc.ValidateAccessToken(tokenString)
	if err != nil {
		t.Fatalf("ValidateAccessToken() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.OrgID != "org-1" {
		t.Errorf("OrgID = %q, want org-1", claims.OrgID)
	}
	if claims.Role != RoleAnalyst {
		t.Errorf("Role = %q, want %q", claims.Role, RoleAnalyst)
	}
	if claims.Issuer != "pulsecheck-test" {
		t.Errorf("Issuer = %q, want pulsecheck-test", claims.Issuer)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}
}

func TestJWTService_ValidateExpiredToken(t *testing.T) {
	svc := newTestService(t, -time.Minute)

	tokenString, _, err := svc.GenerateAccessToken("user-1", "org-1", RoleViewer)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	_, err = svc.ValidateAccessToken(tokenString)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ValidateAccessToken() error = %v, want %v", err, ErrTokenExpired)
	}
}

func TestJWTService_ValidateGarbageToken(t *testing.T) {
	svc := newTestService(t, time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"Empty string", ""},
		{"Not a JWT", "definitely-not-a-token"},
		{"Truncated JWT", "eyJhbGciOiJSUzUxMiJ9.eyJzdWIiOiJ4In0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ValidateAccessToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateAccessToken() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuing := newTestService(t, time.Minute)
	validating := newTestService(t, time.Minute)

	tokenString, _, err := issuing.GenerateAccessToken("user-1", "org-1", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	// Signed under a different key pair
	if _, err := validating.ValidateAccessToken(tokenString); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateAccessToken() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestJWTService_ValidationOnlyWithoutPrivateKey(t *testing.T) {
	keys := generateTestKeys(t)
	svc, err := NewJWTService(JWTConfig{
		PublicKeyPath:     keys.publicKeyPath,
		AccessTokenExpiry: time.Minute,
		Issuer:            "pulsecheck-test",
	})
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}

	if _, _, err := svc.GenerateAccessToken("user-1", "org-1", RoleViewer); !errors.Is(err, ErrSigningDisabled) {
		t.Errorf("GenerateAccessToken() error = %v, want %v", err, ErrSigningDisabled)
	}

	// Validation still works against a token from a signing-enabled service
	signing, err := NewJWTService(JWTConfig{
		PrivateKeyPath:    keys.privateKeyPath,
		PublicKeyPath:     keys.publicKeyPath,
		AccessTokenExpiry: time.Minute,
		Issuer:            "pulsecheck-test",
	})
	if err != nil {
		t.Fatalf("NewJWTService() with private key error = %v", err)
	}
	tokenString, _, err := signing.GenerateAccessToken("user-1", "org-1", RoleViewer)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if _, err := svc.ValidateAccessToken(tokenString); err != nil {
		t.Errorf("ValidateAccessToken() error = %v, want nil", err)
	}
}

func TestNewJWTService_MissingKeys(t *testing.T) {
	_, err := NewJWTService(JWTConfig{PublicKeyPath: "/nonexistent/public.pem"})
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("NewJWTService() error = %v, want %v", err, ErrKeyNotFound)
	}

	keys := generateTestKeys(t)
	_, err = NewJWTService(JWTConfig{
		PublicKeyPath:  keys.publicKeyPath,
		PrivateKeyPath: "/nonexistent/private.pem",
	})
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("NewJWTService() error = %v, want %v", err, ErrKeyNotFound)
	}
}

func TestNewJWTService_MalformedKeyFile(t *testing.T) {
	tmpDir := t.TempDir()
	badPath := filepath.Join(tmpDir, "bad.pem")
	if err := os.WriteFile(badPath, []byte("not pem data"), 0o644); err != nil {
		t.Fatalf("Failed to write bad key: %v", err)
	}

	_, err := NewJWTService(JWTConfig{PublicKeyPath: badPath})
	if !errors.Is(err, ErrInvalidKeyFormat) {
		t.Errorf("NewJWTService() error = %v, want %v", err, ErrInvalidKeyFormat)
	}
}
