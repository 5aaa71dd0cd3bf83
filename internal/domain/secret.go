package domain

import "strings"

// SecretKind tags how a stored secret is encoded. The customer and merchant
// tables are mid-migration from a plaintext column to bcrypt hashes, so both
// encodings are live and must keep verifying.
type SecretKind int

const (
	SecretLegacy SecretKind = iota
	SecretHashed
)

// bcrypt marker prefixes. The dispatch is a prefix rule on these two values
// only, not a full modular-crypt parse; previously issued hashes rely on it.
var hashedPrefixes = []string{"$2a$", "$2b$"}

type Secret struct {
	Kind  SecretKind
	Value string
}

// SecretFromStored classifies a stored secret by prefix inspection. An empty
// stored value classifies as legacy and verifies false downstream.
func SecretFromStored(stored string) Secret {
	for _, prefix := range hashedPrefixes {
		if strings.HasPrefix(stored, prefix) {
			return Secret{Kind: SecretHashed, Value: stored}
		}
	}
	return Secret{Kind: SecretLegacy, Value: stored}
}

func (s Secret) Empty() bool {
	return s.Value == ""
}
