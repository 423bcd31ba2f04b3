package auth

// Claims es lo que se obtiene de un token válido.
type Claims struct {
	// ClientID es el namespace de settings que corresponde al token.
	ClientID string
	Name     string
}
