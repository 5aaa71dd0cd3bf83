package password

import (
	"golang.org/x/crypto/bcrypt"

	"mercato/internal/domain"
)

// Verify checks a submitted secret against the stored one, dispatching on the
// secret's encoding tag. Hashed values go through bcrypt; legacy values are
// compared by direct equality, which keeps rows that predate the hash
// migration verifiable. An empty stored secret never verifies.
func Verify(submitted string, stored domain.Secret) bool {
	if stored.Empty() {
		return false
	}
	switch stored.Kind {
	case domain.SecretHashed:
		return bcrypt.CompareHashAndPassword([]byte(stored.Value), []byte(submitted)) == nil
	default:
		return submitted == stored.Value
	}
}

// Hash produces the stored form for a new or changed secret. New writes are
// always bcrypt; the legacy path exists only for reads.
func Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
