package http

type TokenResponse struct {
	Token string `json:"token"`
}
