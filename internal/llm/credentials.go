package llm

// CredentialKind distinguishes the closed set of credential variants.
type CredentialKind int

const (
	// CredentialNone means the vendor has no secret configured.
	CredentialNone CredentialKind = iota
	// CredentialToken is a bearer/API token.
	CredentialToken
)

// Credentials is a resolved vendor secret. The token is treated as sensitive
// from creation to use; log only the Redacted form.
type Credentials struct {
	Kind  CredentialKind
	Token string
}

func NoCredentials() Credentials {
	return Credentials{Kind: CredentialNone}
}

func TokenCredentials(token string) Credentials {
	return Credentials{Kind: CredentialToken, Token: token}
}

// Redacted returns a loggable fingerprint of the credential.
func (c Credentials) Redacted() string {
	switch c.Kind {
	case CredentialToken:
		if len(c.Token) <= 8 {
			return "token:****"
		}
		return "token:" + c.Token[:4] + "****"
	default:
		return "none"
	}
}
