package settings

import (
	"errors"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
)

var (
	ErrNotFound       = errors.New("settings not found")
	ErrInvalidProfile = errors.New("invalid settings profile")
)

// DefaultProfile is the profile the API server loads at startup.
const DefaultProfile = "default"

// Record is a stored swap config profile.
type Record struct {
	Profile   string          `json:"profile"`
	Config    swap.SwapConfig `json:"config"`
	UpdatedAt time.Time       `json:"updated_at"`
}
