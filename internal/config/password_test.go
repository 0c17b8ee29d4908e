package config

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		pepper   string
		wantCost int
		wantErr  bool
	}{
		{name: "default cost", cost: "", wantCost: 12},
		{name: "minimum cost", cost: "10", wantCost: 10},
		{name: "maximum cost", cost: "14", wantCost: 14},
		{name: "with pepper", cost: "10", pepper: "pepper", wantCost: 10},
		{name: "cost too low", cost: "4", wantErr: true},
		{name: "cost too high", cost: "15", wantErr: true},
		{name: "not a number", cost: "high", wantErr: true},
		{name: "pepper too long", cost: "10", pepper: strings.Repeat("p", 33), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.cost)
			t.Setenv("PASSWORD_PEPPER", tt.pepper)

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))
	assert.False(t, cfg.VerifyPassword("correct horse", "not-a-hash"))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "pepper-one"}
	plain := &PasswordConfig{BcryptCost: 10}
	rotated := &PasswordConfig{BcryptCost: 10, Pepper: "pepper-two"}

	hash, err := peppered.HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("password123", hash))
	assert.False(t, plain.VerifyPassword("password123", hash))
	assert.False(t, rotated.VerifyPassword("password123", hash))
}

func TestPasswordConfig_HashUniqueness(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	h1, err := cfg.HashPassword("same-password")
	require.NoError(t, err)
	h2, err := cfg.HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "salts differ")
	assert.True(t, cfg.VerifyPassword("same-password", h1))
	assert.True(t, cfg.VerifyPassword("same-password", h2))
}

func TestPasswordConfig_TooLong(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10, Pepper: "12345678"}

	_, err := cfg.HashPassword(strings.Repeat("a", 64))
	assert.NoError(t, err, "64 bytes plus an 8 byte pepper fits")

	_, err = cfg.HashPassword(strings.Repeat("a", 65))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.False(t, cfg.VerifyPassword(strings.Repeat("a", 65), "$2a$10$x"))
}

func TestPasswordConfig_ConcurrentAccess(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}
	hash, err := cfg.HashPassword("shared")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cfg.VerifyPassword("shared", hash)
		}(i)
	}
	wg.Wait()
	for _, ok := range results {
		assert.True(t, ok)
	}
}

func BenchmarkHashPassword_Cost10(b *testing.B) {
	cfg := &PasswordConfig{BcryptCost: 10}
	for i := 0; i < b.N; i++ {
		_, _ = cfg.HashPassword("benchmark-password")
	}
}
