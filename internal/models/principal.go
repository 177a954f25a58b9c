package models

// Principal is the authenticated caller extracted from a bearer token.
type Principal struct {
    ClientID string   `json:"clientId"`
    Roles    []string `json:"roles"`
}
