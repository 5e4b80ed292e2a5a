package observable

import "github.com/google/uuid"

// Token identifies one registered callback. It is only useful for Unsubscribe.
// The zero Token is never issued by Subscribe.
type Token struct {
	id uuid.UUID
}

func newToken() Token {
	return Token{id: uuid.New()}
}

// IsZero reports whether t is the zero Token.
func (t Token) IsZero() bool {
	return t.id == uuid.Nil
}

// String implements fmt.Stringer.
func (t Token) String() string {
	return t.id.String()
}
