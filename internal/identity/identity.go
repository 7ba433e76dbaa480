// Package identity derives the deterministic broker identifiers used by
// adaptor provisioning. All derivations are pure: identical inputs always
// produce identical ids, which is what makes re-registration idempotent.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidIdentity reports input that cannot be turned into a broker
// identifier. It is never retried.
var ErrInvalidIdentity = errors.New("invalid identity")

// validID matches the permitted identifier character set for resource
// groups. Slashes are excluded: the adaptor id gains its structure from the
// provider/resourceServer/resourceGroup join, not from the parts.
var validID = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// ValidID reports whether s is a permitted identifier.
func ValidID(s string) bool {
	return validID.MatchString(s)
}

// DeriveUserID computes the internal broker principal for a publisher
// identity: the domain after "@" joined with a hash of the full username.
func DeriveUserID(username string) (string, error) {
	at := strings.Index(username, "@")
	if at < 0 {
		return "", fmt.Errorf("%w: username %q has no domain part", ErrInvalidIdentity, username)
	}
	domain := username[at+1:]
	sum := sha256.Sum256([]byte(username))
	return domain + "/" + hex.EncodeToString(sum[:]), nil
}

// DeriveAdaptorID computes the exchange name for an adaptor.
func DeriveAdaptorID(provider, resourceServer, resourceGroup string) (string, error) {
	if strings.TrimSpace(resourceGroup) == "" {
		return "", fmt.Errorf("%w: resource group is empty", ErrInvalidIdentity)
	}
	if !ValidID(resourceGroup) {
		return "", fmt.Errorf("%w: resource group %q contains invalid characters", ErrInvalidIdentity, resourceGroup)
	}
	return provider + "/" + resourceServer + "/" + resourceGroup, nil
}

// NewSecret generates a random credential for a newly created broker user.
func NewSecret() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
